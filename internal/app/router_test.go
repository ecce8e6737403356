package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"quiz_app_backend/internal/app"
	"quiz_app_backend/internal/service"
	"quiz_app_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGoogle struct {
	profiles map[string]*service.OAuthProfile
}

func (g *fakeGoogle) AuthCodeURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (g *fakeGoogle) FetchProfile(_ context.Context, code string) (*service.OAuthProfile, error) {
	if p, ok := g.profiles[code]; ok {
		return p, nil
	}
	return nil, errors.New("invalid_grant")
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// client 模拟浏览器：保存 cookie，按需带上 CSRF 请求头
type client struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]string
}

func newClient(t *testing.T, a *app.App) *client {
	return &client{t: t, handler: a.Router, cookies: map[string]string{}}
}

func (c *client) do(method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for name, value := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	if token, ok := c.cookies["csrftoken"]; ok {
		req.Header.Set("X-CSRFToken", token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck.Value
	}
	return w
}

func (c *client) login(username string) {
	c.t.Helper()
	c.do(http.MethodGet, "/api/csrf", nil)
	w := c.do(http.MethodPost, "/api/auth/login", map[string]interface{}{
		"username": username,
		"password": testutil.DefaultPassword,
	})
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env
}

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	db := testutil.NewDB(t)
	a, err := app.New(testutil.Config(), db, nil, app.WithOAuthProvider(&fakeGoogle{
		profiles: map[string]*service.OAuthProfile{
			"good-code": {ID: "google-1", Email: "dana@gmail.com", VerifiedEmail: true, Name: "Dana"},
		},
	}))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(context.Background()) })
	return a
}

func mathQuizBody() map[string]interface{} {
	return map[string]interface{}{
		"title":        "Math",
		"hide_answers": true,
		"time_limit":   10,
		"questions": []map[string]interface{}{
			{
				"text": "2+2?",
				"answers": []map[string]interface{}{
					{"text": "4", "is_correct": true},
					{"text": "5", "is_correct": false},
				},
			},
		},
	}
}

type quizDetail struct {
	ID             uint   `json:"id"`
	Title          string `json:"title"`
	Author         string `json:"author"`
	AuthorID       uint   `json:"author_id"`
	QuestionsCount int64  `json:"questions_count"`
	HideAnswers    bool   `json:"hide_answers"`
	TimeLimit      int    `json:"time_limit"`
	Questions      []struct {
		Text    string `json:"text"`
		Answers []struct {
			Text      string `json:"text"`
			IsCorrect bool   `json:"is_correct"`
		} `json:"answers"`
	} `json:"questions"`
}

func TestMathQuizScenario(t *testing.T) {
	a := newTestApp(t)
	testutil.CreateUser(t, a.DB, "alice")
	alice := newClient(t, a)
	alice.login("alice")

	assert.Equal(t, "true", alice.cookies["is_authenticated"])
	assert.NotEmpty(t, alice.cookies["sessionid"])

	var status struct {
		Authenticated bool   `json:"authenticated"`
		Username      string `json:"username"`
	}
	decode(t, alice.do(http.MethodGet, "/api/auth/check", nil), &status)
	assert.True(t, status.Authenticated)
	assert.Equal(t, "alice", status.Username)

	w := alice.do(http.MethodPost, "/api/quizzes", mathQuizBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created quizDetail
	decode(t, w, &created)
	assert.Equal(t, "alice", created.Author)
	assert.EqualValues(t, 1, created.QuestionsCount)
	assert.True(t, created.HideAnswers)

	// hide_answers 只影响前端展示，is_correct 照常返回
	require.Len(t, created.Questions, 1)
	require.Len(t, created.Questions[0].Answers, 2)
	assert.True(t, created.Questions[0].Answers[0].IsCorrect)
	assert.False(t, created.Questions[0].Answers[1].IsCorrect)
	assert.Equal(t, 10, created.TimeLimit)

	var list []quizDetail
	decode(t, alice.do(http.MethodGet, "/api/quizzes?mine=true", nil), &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Math", list[0].Title)
	assert.EqualValues(t, 1, list[0].QuestionsCount)

	var page struct {
		CurrentIndex   int   `json:"current_index"`
		TotalQuestions int64 `json:"total_questions"`
		Question       struct {
			Text string `json:"text"`
		} `json:"question"`
	}
	decode(t, alice.do(http.MethodGet, fmt.Sprintf("/api/quizzes/%d/questions/0", created.ID), nil), &page)
	assert.Equal(t, "2+2?", page.Question.Text)
	assert.EqualValues(t, 1, page.TotalQuestions)

	w = alice.do(http.MethodGet, fmt.Sprintf("/api/quizzes/%d/questions/1", created.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = alice.do(http.MethodGet, fmt.Sprintf("/api/quizzes/%d/questions/abc", created.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	result := map[string]interface{}{"quiz_id": created.ID, "score": 1, "max_score": 1, "user_answers": map[string]interface{}{"0": []int{0}}}
	w = alice.do(http.MethodPost, "/api/save-quiz-result", result)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = alice.do(http.MethodPost, "/api/save-quiz-result", result)
	require.Equal(t, http.StatusCreated, w.Code)

	var results []struct {
		ID        uint   `json:"id"`
		QuizTitle string `json:"quiz_title"`
		Score     int    `json:"score"`
	}
	decode(t, alice.do(http.MethodGet, "/api/quiz-results", nil), &results)
	require.Len(t, results, 1, "identical submissions collapse into one row")
	assert.Equal(t, "Math", results[0].QuizTitle)
}

func TestAuthenticationAndCSRFGates(t *testing.T) {
	a := newTestApp(t)
	testutil.CreateUser(t, a.DB, "alice")

	anon := newClient(t, a)
	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodGet, "/api/quizzes", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodPost, "/api/quizzes", mathQuizBody()).Code)
	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodGet, "/api/quiz-results", nil).Code)

	var status struct {
		Authenticated bool `json:"authenticated"`
	}
	decode(t, anon.do(http.MethodGet, "/api/auth/check", nil), &status)
	assert.False(t, status.Authenticated)

	// 没有 CSRF token 不能登录
	w := anon.do(http.MethodPost, "/api/auth/login", map[string]interface{}{"username": "alice", "password": testutil.DefaultPassword})
	assert.Equal(t, http.StatusForbidden, w.Code)

	alice := newClient(t, a)
	alice.login("alice")

	token := alice.cookies["csrftoken"]
	delete(alice.cookies, "csrftoken")
	w = alice.do(http.MethodPost, "/api/quizzes", mathQuizBody())
	assert.Equal(t, http.StatusForbidden, w.Code)

	alice.cookies["csrftoken"] = token
	w = alice.do(http.MethodPost, "/api/quizzes", mathQuizBody(), "X-CSRFToken", "wrong")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = alice.do(http.MethodPost, "/api/quizzes", mathQuizBody())
	assert.Equal(t, http.StatusCreated, w.Code)

	w = alice.do(http.MethodPost, "/api/auth/login", map[string]interface{}{"username": "alice", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = alice.do(http.MethodGet, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, alice.cookies, "sessionid")
	assert.NotContains(t, alice.cookies, "is_authenticated")
	assert.Equal(t, http.StatusUnauthorized, alice.do(http.MethodGet, "/api/quizzes", nil).Code)
}

func TestCSRFEndpoint(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)

	w := c.do(http.MethodGet, "/api/csrf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		CSRFToken string `json:"csrfToken"`
	}
	decode(t, w, &body)
	assert.Len(t, body.CSRFToken, 64)
	assert.Equal(t, body.CSRFToken, w.Header().Get("X-CSRFToken"))
	assert.Equal(t, body.CSRFToken, c.cookies["csrftoken"])

	// 已有合法 token 时复用，普通 OPTIONS 也返回 token
	w = c.do(http.MethodOptions, "/api/csrf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &body)
	assert.Equal(t, c.cookies["csrftoken"], body.CSRFToken)
}

func TestQuizOwnership(t *testing.T) {
	a := newTestApp(t)
	testutil.CreateUser(t, a.DB, "alice")
	testutil.CreateUser(t, a.DB, "bob")
	alice, bob := newClient(t, a), newClient(t, a)
	alice.login("alice")
	bob.login("bob")

	var created quizDetail
	decode(t, alice.do(http.MethodPost, "/api/quizzes", mathQuizBody()), &created)
	path := fmt.Sprintf("/api/quizzes/%d", created.ID)

	assert.Equal(t, http.StatusNotFound, bob.do(http.MethodGet, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, bob.do(http.MethodPatch, path, map[string]interface{}{"title": "Hacked"}).Code)
	assert.Equal(t, http.StatusNotFound, bob.do(http.MethodDelete, path, nil).Code)

	// 详情对所有登录用户可见
	var detail quizDetail
	decode(t, bob.do(http.MethodGet, path+"/details", nil), &detail)
	assert.Equal(t, "Math", detail.Title)
	require.Len(t, detail.Questions, 1)

	var all []quizDetail
	decode(t, bob.do(http.MethodGet, "/api/quizzes", nil), &all)
	assert.Len(t, all, 1)
	decode(t, bob.do(http.MethodGet, "/api/quizzes?mine=true", nil), &all)
	assert.Empty(t, all)

	var patched quizDetail
	decode(t, alice.do(http.MethodPatch, path, map[string]interface{}{"title": "Arithmetic"}), &patched)
	assert.Equal(t, "Arithmetic", patched.Title)
	assert.True(t, patched.HideAnswers)
	assert.Len(t, patched.Questions, 1)

	w := alice.do(http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, alice.do(http.MethodGet, path, nil).Code)
	assert.Equal(t, http.StatusBadRequest, alice.do(http.MethodGet, "/api/quizzes/abc", nil).Code)
}

func TestQuizAuthorFromSession(t *testing.T) {
	a := newTestApp(t)
	owner := testutil.CreateUser(t, a.DB, "alice")
	bob := testutil.CreateUser(t, a.DB, "bob")
	alice := newClient(t, a)
	alice.login("alice")

	body := mathQuizBody()
	body["author"] = bob.ID
	body["author_id"] = bob.ID
	w := alice.do(http.MethodPost, "/api/quizzes", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created quizDetail
	decode(t, w, &created)
	assert.Equal(t, "alice", created.Author)
	assert.Equal(t, owner.ID, created.AuthorID)

	body = mathQuizBody()
	body["title"] = "Algebra"
	body["author"] = bob.ID
	body["author_id"] = bob.ID
	w = alice.do(http.MethodPut, fmt.Sprintf("/api/quizzes/%d", created.ID), body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated quizDetail
	decode(t, w, &updated)
	assert.Equal(t, "Algebra", updated.Title)
	assert.Equal(t, "alice", updated.Author)
	assert.Equal(t, owner.ID, updated.AuthorID)

	// 作者未变，bob 的列表里没有这份测验
	bobClient := newClient(t, a)
	bobClient.login("bob")
	var mine []quizDetail
	decode(t, bobClient.do(http.MethodGet, "/api/quizzes?mine=true", nil), &mine)
	assert.Empty(t, mine)
}

func TestQuizValidationErrors(t *testing.T) {
	a := newTestApp(t)
	testutil.CreateUser(t, a.DB, "alice")
	alice := newClient(t, a)
	alice.login("alice")

	noCorrect := mathQuizBody()
	noCorrect["questions"] = []map[string]interface{}{
		{"text": "2+2?", "answers": []map[string]interface{}{{"text": "5", "is_correct": false}}},
	}
	w := alice.do(http.MethodPost, "/api/quizzes", noCorrect)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w, nil)
	assert.Contains(t, env.Message, "has_correct")

	noQuestions := mathQuizBody()
	noQuestions["questions"] = []interface{}{}
	assert.Equal(t, http.StatusBadRequest, alice.do(http.MethodPost, "/api/quizzes", noQuestions).Code)

	noTitle := mathQuizBody()
	delete(noTitle, "title")
	assert.Equal(t, http.StatusBadRequest, alice.do(http.MethodPost, "/api/quizzes", noTitle).Code)

	w = alice.do(http.MethodPost, "/api/save-quiz-result", map[string]interface{}{"quiz_id": 999, "score": 1, "max_score": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGoogleLoginFlow(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)

	w := c.do(http.MethodGet, "/api/accounts/google/login", nil)
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)
	require.NotEmpty(t, c.cookies["sessionid"])

	w = c.do(http.MethodGet, "/api/accounts/google/login/callback?code=good-code&state=forged", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = c.do(http.MethodGet, "/api/accounts/google/login/callback?error=access_denied", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = c.do(http.MethodGet, "/api/accounts/google/login/callback?code=good-code&state="+url.QueryEscape(state), nil)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	assert.Equal(t, "http://localhost:3000/quizzes?auth=success", w.Header().Get("Location"))
	assert.Equal(t, "true", c.cookies["is_authenticated"])

	var status struct {
		Authenticated bool   `json:"authenticated"`
		Username      string `json:"username"`
	}
	decode(t, c.do(http.MethodGet, "/api/auth/check", nil), &status)
	assert.True(t, status.Authenticated)
	assert.Equal(t, "dana", status.Username)

	// state 只能使用一次
	w = c.do(http.MethodGet, "/api/accounts/google/login/callback?code=good-code&state="+url.QueryEscape(state), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminEndpoints(t *testing.T) {
	a := newTestApp(t)
	alice := testutil.CreateUser(t, a.DB, "alice")
	testutil.CreateUser(t, a.DB, "boss", testutil.Staff)

	user, staff := newClient(t, a), newClient(t, a)
	user.login("alice")
	staff.login("boss")

	assert.Equal(t, http.StatusForbidden, user.do(http.MethodGet, "/api/admin/users", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, newClient(t, a).do(http.MethodGet, "/api/admin/users", nil).Code)

	var users []struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
	}
	decode(t, staff.do(http.MethodGet, "/api/admin/users", nil), &users)
	assert.Len(t, users, 2)

	var created quizDetail
	decode(t, user.do(http.MethodPost, "/api/quizzes", mathQuizBody()), &created)
	w := user.do(http.MethodPost, "/api/save-quiz-result", map[string]interface{}{"quiz_id": created.ID, "score": 0, "max_score": 1})
	require.Equal(t, http.StatusCreated, w.Code)

	var results []struct {
		ID   uint `json:"id"`
		User uint `json:"user"`
	}
	decode(t, staff.do(http.MethodGet, fmt.Sprintf("/api/admin/quiz-results?user_id=%d", alice.ID), nil), &results)
	require.Len(t, results, 1)
	assert.Equal(t, alice.ID, results[0].User)

	assert.Equal(t, http.StatusOK, staff.do(http.MethodGet, fmt.Sprintf("/api/admin/quiz-results/%d", results[0].ID), nil).Code)
	assert.Equal(t, http.StatusNotFound, staff.do(http.MethodGet, "/api/admin/quiz-results/999", nil).Code)
	assert.Equal(t, http.StatusBadRequest, staff.do(http.MethodGet, "/api/admin/quiz-results?user_id=x", nil).Code)
}

func TestCORSPreflight(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)

	w := c.do(http.MethodOptions, "/api/quizzes", nil,
		"Origin", "http://localhost:3000",
		"Access-Control-Request-Method", "POST",
	)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-CSRFToken")

	w = c.do(http.MethodOptions, "/api/quizzes", nil,
		"Origin", "http://evil.example.com",
		"Access-Control-Request-Method", "POST",
	)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = c.do(http.MethodGet, "/api/health", nil, "Origin", "http://localhost:3000")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestConfigReloadUpdatesOrigins(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)

	cfg := testutil.Config()
	cfg.CORS.AllowedOrigins = []string{"https://quiz.example.com"}
	cfg.OAuth.LoginRedirectURL = "https://quiz.example.com/home?tab=1"
	a.ApplyConfig(cfg)

	w := c.do(http.MethodGet, "/api/health", nil, "Origin", "https://quiz.example.com")
	assert.Equal(t, "https://quiz.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	w = c.do(http.MethodGet, "/api/health", nil, "Origin", "http://localhost:3000")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = c.do(http.MethodGet, "/api/accounts/google/login", nil)
	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	w = c.do(http.MethodGet, "/api/accounts/google/login/callback?code=good-code&state="+url.QueryEscape(location.Query().Get("state")), nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://quiz.example.com/home?tab=1&auth=success", w.Header().Get("Location"))
}
