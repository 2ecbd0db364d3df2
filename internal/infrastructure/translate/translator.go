package translate

import (
	"context"
	"fmt"
	"os"
	"strings"

	alimt20181012 "github.com/alibabacloud-go/alimt-20181012/v2/client"
	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	util "github.com/alibabacloud-go/tea-utils/v2/service"
	"github.com/alibabacloud-go/tea/tea"
	"go.uber.org/zap"

	"alliance_chat_server/internal/config"
	"alliance_chat_server/pkg/errorx"
)

// Translator 机器翻译接口
// 抽象单次文本翻译操作，支持多种实现（阿里云、本地 mock 等）
// 上层应依赖此接口而非具体实现
type Translator interface {
	// TranslateText 将文本从 sourceLang 翻译为 targetLang
	TranslateText(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// localTranslator 本地 mock 翻译实现
// 不调用第三方服务，返回带语言标记的原文，便于本机跑通消息链路
type localTranslator struct{}

func (t *localTranslator) TranslateText(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return fmt.Sprintf("[%s] %s", targetLang, text), nil
}

func shouldUseMock(conf config.TranslateConfig) bool {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("ALLIANCE_CHAT_TRANSLATE_MODE")))
	if mode == "mock" || mode == "local" || mode == "test" {
		return true
	}
	// configs/config.toml 默认是占位字符串；没配真实 AK 时默认走 mock，便于本机跑通消息翻译链路
	ak := strings.ToLower(strings.TrimSpace(conf.AccessKeyID))
	ask := strings.ToLower(strings.TrimSpace(conf.AccessKeySecret))
	if ak == "" || ask == "" {
		return true
	}
	if strings.Contains(ak, "your-access-key") || strings.Contains(ask, "your-access-key") {
		return true
	}
	return false
}

// aliyunTranslator 阿里云机器翻译实现
// 实现 Translator 接口，遵循依赖倒置原则
type aliyunTranslator struct {
	client    *alimt20181012.Client
	timeoutMs int
}

// Init 初始化阿里云机器翻译 Client 并创建 Translator 实例
// 未配置真实 AK 时返回本地 Mock 实现
func Init() (Translator, error) {
	conf := config.GetConfig().TranslateConfig
	if shouldUseMock(conf) {
		zap.L().Warn("Translate Service 使用本地 Mock 模式（不调用第三方机器翻译）")
		return &localTranslator{}, nil
	}

	endpoint := conf.Endpoint
	if endpoint == "" {
		endpoint = "mt.cn-hangzhou.aliyuncs.com"
	}
	openapiConf := &openapi.Config{
		AccessKeyId:     tea.String(conf.AccessKeyID),
		AccessKeySecret: tea.String(conf.AccessKeySecret),
	}
	openapiConf.Endpoint = tea.String(endpoint)
	client, err := alimt20181012.NewClient(openapiConf)
	if err != nil {
		zap.L().Error("Aliyun Translate Client Init Failed", zap.Error(err))
		return nil, err
	}

	return &aliyunTranslator{client: client, timeoutMs: conf.TimeoutMs}, nil
}

// NewAliyunTranslator 创建阿里云翻译实例（用于依赖注入）
func NewAliyunTranslator(client *alimt20181012.Client, timeoutMs int) Translator {
	return &aliyunTranslator{client: client, timeoutMs: timeoutMs}
}

// TranslateText 调用阿里云通用翻译接口（实现 Translator 接口）
func (t *aliyunTranslator) TranslateText(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if t.client == nil {
		zap.L().Error("翻译服务调用失败：translate client 未初始化")
		return "", errorx.New(errorx.CodeServerBusy, "翻译服务未初始化")
	}

	request := &alimt20181012.TranslateGeneralRequest{
		FormatType:     tea.String("text"),
		SourceLanguage: tea.String(sourceLang),
		TargetLanguage: tea.String(targetLang),
		SourceText:     tea.String(text),
		Scene:          tea.String("general"),
	}

	// SDK 不接受 context，通过 RuntimeOptions 限制单次调用耗时
	runtime := &util.RuntimeOptions{}
	if t.timeoutMs > 0 {
		runtime.ReadTimeout = tea.Int(t.timeoutMs)
		runtime.ConnectTimeout = tea.Int(t.timeoutMs)
	}

	rsp, err := t.client.TranslateGeneralWithOptions(request, runtime)
	if err != nil {
		return "", errorx.Wrapf(err, errorx.CodeServerBusy, "调用机器翻译 %s->%s", sourceLang, targetLang)
	}
	if rsp.Body == nil || rsp.Body.Data == nil || rsp.Body.Data.Translated == nil {
		return "", errorx.Newf(errorx.CodeServerBusy, "机器翻译返回空结果 %s->%s code=%d",
			sourceLang, targetLang, tea.Int32Value(rsp.Body.Code))
	}
	return tea.StringValue(rsp.Body.Data.Translated), nil
}
