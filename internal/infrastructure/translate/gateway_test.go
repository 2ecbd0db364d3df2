package translate

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"
)

// fakeTranslator 可编程的 Translator 假实现
type fakeTranslator struct {
	mu    sync.Mutex
	calls []string
	fn    func(text, sourceLang, targetLang string) (string, error)
}

func (f *fakeTranslator) TranslateText(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, targetLang)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(text, sourceLang, targetLang)
	}
	return "[" + targetLang + "] " + text, nil
}

func (f *fakeTranslator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestTranslateSameLanguageSkipsCall(t *testing.T) {
	ft := &fakeTranslator{}
	g := NewGateway(ft, 0)

	got := g.Translate(context.Background(), "hello", "en", "en")
	if got != "hello" {
		t.Fatalf("got %q, want original text", got)
	}
	if ft.callCount() != 0 {
		t.Fatalf("translator should not be called for same language")
	}
}

func TestTranslateEmptyTextSkipsCall(t *testing.T) {
	ft := &fakeTranslator{}
	g := NewGateway(ft, 0)

	if got := g.Translate(context.Background(), "", "en", "zh"); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
	if ft.callCount() != 0 {
		t.Fatalf("translator should not be called for empty text")
	}
}

func TestTranslateFailureFallsBackToOriginal(t *testing.T) {
	ft := &fakeTranslator{fn: func(text, sourceLang, targetLang string) (string, error) {
		return "", errors.New("upstream down")
	}}
	g := NewGateway(ft, 0)

	got := g.Translate(context.Background(), "hello", "en", "zh")
	if got != "hello" {
		t.Fatalf("got %q, want fallback to original", got)
	}
}

func TestTranslateTimeoutFallsBackToOriginal(t *testing.T) {
	ft := &fakeTranslator{fn: func(text, sourceLang, targetLang string) (string, error) {
		time.Sleep(200 * time.Millisecond)
		return "too late", nil
	}}
	g := NewGateway(ft, 20*time.Millisecond)

	got := g.Translate(context.Background(), "hello", "en", "zh")
	if got != "hello" {
		t.Fatalf("got %q, want fallback on timeout", got)
	}
}

func TestFanOutDedupAndExcludeSender(t *testing.T) {
	ft := &fakeTranslator{}
	g := NewGateway(ft, 0)

	translations := g.FanOut(context.Background(), "hello", "en",
		[]string{"zh", "zh", "en", "ja", "xx"})

	if len(translations) != 2 {
		t.Fatalf("got %d translations, want 2: %v", len(translations), translations)
	}
	if translations["zh"] != "[zh] hello" {
		t.Errorf("zh = %q", translations["zh"])
	}
	if translations["ja"] != "[ja] hello" {
		t.Errorf("ja = %q", translations["ja"])
	}
	if _, ok := translations["en"]; ok {
		t.Error("sender language should be excluded")
	}
	if _, ok := translations["xx"]; ok {
		t.Error("unsupported language should be excluded")
	}
}

func TestFanOutPerLanguageFailureIsolated(t *testing.T) {
	ft := &fakeTranslator{fn: func(text, sourceLang, targetLang string) (string, error) {
		if targetLang == "zh" {
			return "", errors.New("quota exceeded")
		}
		return "[" + targetLang + "] " + text, nil
	}}
	g := NewGateway(ft, 0)

	translations := g.FanOut(context.Background(), "hello", "en", []string{"zh", "ja"})

	// zh 失败兜底原文，ja 正常翻译
	if translations["zh"] != "hello" {
		t.Errorf("zh = %q, want fallback original", translations["zh"])
	}
	if translations["ja"] != "[ja] hello" {
		t.Errorf("ja = %q", translations["ja"])
	}
}

func TestResolveTargetLanguages(t *testing.T) {
	g := NewGateway(&fakeTranslator{}, 0)

	got := g.ResolveTargetLanguages([]string{"zh", "en", "ja", "zh", "bad"}, "en")
	sort.Strings(got)
	if len(got) != 2 || got[0] != "ja" || got[1] != "zh" {
		t.Fatalf("got %v, want [ja zh]", got)
	}
}
