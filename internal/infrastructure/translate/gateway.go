// Package translate 提供消息翻译网关
// 在 Translator 之上增加超时控制、失败兜底和多语言并发扇出
package translate

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"alliance_chat_server/pkg/enum/language/language_enum"
)

// DefaultTimeout 单语言翻译的默认超时
const DefaultTimeout = 5 * time.Second

// Gateway 翻译网关
// 翻译失败或超时一律回退到原文，保证消息链路不因翻译故障中断
type Gateway struct {
	translator Translator
	timeout    time.Duration
}

// NewGateway 创建翻译网关
// timeout <= 0 时使用 DefaultTimeout
func NewGateway(translator Translator, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{translator: translator, timeout: timeout}
}

// Translate 翻译单条文本，失败时返回原文
// 返回值永远可用，不返回错误
func (g *Gateway) Translate(ctx context.Context, text, sourceLang, targetLang string) string {
	if text == "" || sourceLang == targetLang {
		return text
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type result struct {
		translated string
		err        error
	}
	ch := make(chan result, 1)
	go func() {
		translated, err := g.translator.TranslateText(ctx, text, sourceLang, targetLang)
		ch <- result{translated: translated, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			zap.L().Warn("翻译失败，回退原文",
				zap.String("source", sourceLang), zap.String("target", targetLang), zap.Error(r.err))
			return text
		}
		return r.translated
	case <-ctx.Done():
		zap.L().Warn("翻译超时，回退原文",
			zap.String("source", sourceLang), zap.String("target", targetLang))
		return text
	}
}

// FanOut 并发翻译到多个目标语言
// targets 去重后每个语言一个 goroutine，单语言失败不影响其他语言
// 返回 language -> 译文（或兜底原文）的映射
func (g *Gateway) FanOut(ctx context.Context, text, sourceLang string, targets []string) map[string]string {
	targets = dedup(targets, sourceLang)
	translations := make(map[string]string, len(targets))
	if len(targets) == 0 {
		return translations
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, target := range targets {
		wg.Add(1)
		go func(lang string) {
			defer wg.Done()
			translated := g.Translate(ctx, text, sourceLang, lang)
			mu.Lock()
			translations[lang] = translated
			mu.Unlock()
		}(target)
	}
	wg.Wait()
	return translations
}

// ResolveTargetLanguages 计算消息的翻译目标语言
// 取联盟成员语言集合，去掉发送者语言和不受支持的语言代码
func (g *Gateway) ResolveTargetLanguages(memberLanguages []string, senderLang string) []string {
	return dedup(memberLanguages, senderLang)
}

// dedup 去重并剔除 exclude 和不受支持的语言
func dedup(languages []string, exclude string) []string {
	seen := make(map[string]struct{}, len(languages))
	result := make([]string, 0, len(languages))
	for _, lang := range languages {
		if lang == exclude || !language_enum.IsSupported(lang) {
			continue
		}
		if _, ok := seen[lang]; ok {
			continue
		}
		seen[lang] = struct{}{}
		result = append(result, lang)
	}
	return result
}
