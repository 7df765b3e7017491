package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	return WithLocalizer(context.Background(), NewLocalizer(lang))
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "Correct"); got != "Correct!" {
		t.Errorf("T(Correct) = %q, want 'Correct!'", got)
	}
	if got := T(ctx, "RestartQuiz"); got != "Restart Quiz" {
		t.Errorf("T(RestartQuiz) = %q, want 'Restart Quiz'", got)
	}
}

func TestTranslateRussian(t *testing.T) {
	ctx := initLang(t, "ru")

	if got := T(ctx, "Correct"); got != "Верно!" {
		t.Errorf("T(Correct) = %q, want 'Верно!'", got)
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	if got := Tp(ctx, "QuestionsCount", 1); got != "1 question" {
		t.Errorf("Tp(QuestionsCount, 1) = %q", got)
	}
	if got := Tp(ctx, "QuestionsCount", 10); got != "10 questions" {
		t.Errorf("Tp(QuestionsCount, 10) = %q", got)
	}

	ctx = initLang(t, "ru")
	if got := Tp(ctx, "QuestionsCount", 5); got != "5 вопросов" {
		t.Errorf("ru Tp(QuestionsCount, 5) = %q", got)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got := Td(ctx, "ResultSummary", map[string]any{"Score": 2, "Total": 3})
	if got != "You got 2 out of 3 correct!!!" {
		t.Errorf("Td(ResultSummary) = %q", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "NonExistentKey"); got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestLanguages(t *testing.T) {
	initLang(t, "en")
	if n := len(Languages()); n != 2 {
		t.Errorf("expected 2 loaded languages, got %d", n)
	}

	tests := []struct {
		lang string
		want bool
	}{
		{"en", true},
		{"ru", true},
		{"ru-RU", true},
		{"de", false},
		{"not a tag!", false},
	}
	for _, tt := range tests {
		if got := Supported(tt.lang); got != tt.want {
			t.Errorf("Supported(%q) = %v, want %v", tt.lang, got, tt.want)
		}
	}
}

func TestMiddlewareLanguageSelection(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	tests := []struct {
		name       string
		target     string
		accept     string
		cookie     string
		want       string
		wantCookie string
	}{
		{"default", "/", "", "", "Correct!", ""},
		{"accept header", "/", "ru-RU,ru;q=0.9", "", "Верно!", ""},
		{"query wins", "/?lang=en", "ru", "", "Correct!", "en"},
		{"query sets cookie", "/?lang=ru", "", "", "Верно!", "ru"},
		{"cookie after redirect", "/", "en", "ru", "Верно!", ""},
		{"query beats cookie", "/?lang=en", "", "ru", "Correct!", "en"},
		{"unknown falls back", "/?lang=fr", "", "", "Correct!", ""},
		{"unknown cookie ignored", "/", "", "fr", "Correct!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := Middleware("en")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = T(r.Context(), "Correct")
			}))
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: LangCookieName, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}

			var setCookie string
			for _, c := range rec.Result().Cookies() {
				if c.Name == LangCookieName {
					setCookie = c.Value
				}
			}
			if setCookie != tt.wantCookie {
				t.Errorf("lang cookie = %q, want %q", setCookie, tt.wantCookie)
			}
		})
	}
}
