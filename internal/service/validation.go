package service

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidatorsOnce sync.Once

// RegisterValidators 在 gin 的校验引擎上注册题目校验规则，并让错误信息使用 json 字段名
func RegisterValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		v.RegisterStructValidation(validateQuestion, QuestionReq{})
	})
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// 每道题至少一个正确答案
func validateQuestion(sl validator.StructLevel) {
	q := sl.Current().Interface().(QuestionReq)
	if len(q.Answers) == 0 {
		return
	}
	if !q.hasCorrectAnswer() {
		sl.ReportError(q.Answers, "answers", "Answers", "has_correct", "")
	}
}
