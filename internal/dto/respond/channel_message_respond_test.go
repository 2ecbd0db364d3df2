package respond

import "testing"

func TestContentForFallbackChain(t *testing.T) {
	msg := &ChannelMessageRespond{
		Content:  "merhaba",
		Language: "tr",
		Translations: map[string]string{
			"en": "hello",
			"ja": "",
		},
	}

	// 同语言直接返回原文
	if got := msg.ContentFor("tr"); got != "merhaba" {
		t.Errorf("ContentFor(tr) = %q, want original", got)
	}
	// 有译文返回译文
	if got := msg.ContentFor("en"); got != "hello" {
		t.Errorf("ContentFor(en) = %q, want translation", got)
	}
	// 空译文回退原文
	if got := msg.ContentFor("ja"); got != "merhaba" {
		t.Errorf("ContentFor(ja) = %q, want fallback to original", got)
	}
	// 缺译文回退原文，任何输入都有返回值
	if got := msg.ContentFor("ko"); got != "merhaba" {
		t.Errorf("ContentFor(ko) = %q, want fallback to original", got)
	}
}

func TestContentForWithoutTranslations(t *testing.T) {
	msg := &ChannelMessageRespond{Content: "hello", Language: "en"}
	if got := msg.ContentFor("zh"); got != "hello" {
		t.Errorf("ContentFor(zh) = %q, want original", got)
	}
}
