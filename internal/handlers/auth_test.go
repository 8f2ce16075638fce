package handlers_test

import (
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"testing"

	"newsroom/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// html/template escapes the plus sign as &#43;
var captchaQuestion = regexp.MustCompile(`<span class="captcha">(\d+) (\+|&#43;|-) (\d+)</span>`)

// solveCaptcha loads the sign-up form and answers its arithmetic question.
func solveCaptcha(t *testing.T, c *client) string {
	t.Helper()
	rec := c.get("/signin")
	require.Equal(t, http.StatusOK, rec.Code)

	m := captchaQuestion.FindStringSubmatch(rec.Body.String())
	require.NotNil(t, m, "captcha question not found")
	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[3])
	if m[2] != "-" {
		return strconv.Itoa(a + b)
	}
	return strconv.Itoa(a - b)
}

func signinForm(captcha string) url.Values {
	return url.Values{
		"name":                  {"Lois"},
		"email":                 {"Lois@Example.com"},
		"password":              {"superman-fan"},
		"password_confirmation": {"superman-fan"},
		"captcha":               {captcha},
	}
}

func TestSolveCaptchaHandlesBothOperators(t *testing.T) {
	app := newTestApp(t)
	c := app.client()

	seen := map[bool]bool{}
	for range 40 {
		rec := c.get("/signin")
		require.Equal(t, http.StatusOK, rec.Code)
		m := captchaQuestion.FindStringSubmatch(rec.Body.String())
		require.NotNil(t, m, "captcha question not found")
		seen[m[2] == "-"] = true
	}
	assert.Len(t, seen, 2, "both addition and subtraction were rendered")
}

func TestSigninCreatesReader(t *testing.T) {
	app := newTestApp(t)
	c := app.client()

	rec := c.post("/signin", signinForm(solveCaptcha(t, c)))
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(t, "/articles", rec.Header().Get("Location"))

	var user models.User
	require.NoError(t, app.conn.Preload("Role").Where("email = ?", "lois@example.com").First(&user).Error)
	assert.Equal(t, "Lois", user.Name)
	require.NotNil(t, user.Role)
	assert.Equal(t, models.RoleReader, user.Role.Name)
	assert.NotEqual(t, "superman-fan", user.Password)

	// the new account is logged in
	assert.Equal(t, http.StatusOK, c.get("/notifications").Code)
	assert.Equal(t, http.StatusForbidden, c.get("/comments/moderation").Code)
}

func TestSigninRejectsWrongCaptcha(t *testing.T) {
	app := newTestApp(t)
	c := app.client()
	answer, _ := strconv.Atoi(solveCaptcha(t, c))

	rec := c.post("/signin", signinForm(strconv.Itoa(answer+1)))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "The answer is not correct.")
	var count int64
	require.NoError(t, app.conn.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSigninValidation(t *testing.T) {
	app := newTestApp(t)
	app.user("Existing", "taken@example.com", models.RoleReader)

	cases := map[string]func(url.Values){
		"password_confirmation": func(f url.Values) { f.Set("password_confirmation", "different") },
		"password":              func(f url.Values) { f.Set("password", "short"); f.Set("password_confirmation", "short") },
		"email":                 func(f url.Values) { f.Set("email", "taken@example.com") },
		"name":                  func(f url.Values) { f.Set("name", " ") },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			c := app.client()
			form := signinForm(solveCaptcha(t, c))
			mutate(form)

			rec := c.post("/signin", form)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.NotContains(t, rec.Body.String(), "superman-fan", "passwords are never echoed")
		})
	}

	var count int64
	require.NoError(t, app.conn.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)
	user := app.user("Clark", "clark@example.com", models.RoleModerator)
	c := app.client()

	rec := c.post("/login", url.Values{"email": {user.Email}, "password": {"kryptonite"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "These credentials do not match our records.")

	rec = c.post("/login", url.Values{"email": {"nobody@example.com"}, "password": {testPassword}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.post("/login", url.Values{"email": {"CLARK@example.com"}, "password": {testPassword}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, http.StatusOK, c.get("/comments/moderation").Code)

	rec = c.post("/logout", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", c.get("/comments/moderation").Header().Get("Location"))
}
