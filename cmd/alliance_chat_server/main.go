package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"alliance_chat_server/internal/config"
	dao "alliance_chat_server/internal/dao/mysql"
	myredis "alliance_chat_server/internal/dao/redis"
	"alliance_chat_server/internal/handler"
	"alliance_chat_server/internal/https_server"
	"alliance_chat_server/internal/infrastructure/logger"
	"alliance_chat_server/internal/infrastructure/translate"
	"alliance_chat_server/internal/service"
	"alliance_chat_server/internal/service/chat"
	"alliance_chat_server/pkg/util/jwt"
	"alliance_chat_server/pkg/util/snowflake"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, "dev"); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化数据库
	dao.Init()
	zap.L().Info("数据库初始化成功")

	// 4. 初始化 Redis
	myredis.Init()
	zap.L().Info("Redis 初始化成功")

	// 5. 初始化 JWT 和雪花 ID
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)
	snowflake.Init()
	zap.L().Info("JWT/Snowflake 初始化成功")

	// 6. 初始化翻译网关（按配置选择阿里云机器翻译或本地 mock）
	translator, err := translate.Init()
	if err != nil {
		zap.L().Fatal("翻译服务初始化失败", zap.Error(err))
	}
	gateway := translate.NewGateway(translator, time.Duration(conf.TranslateConfig.TimeoutMs)*time.Millisecond)
	zap.L().Info("翻译网关初始化成功")

	// 7. 初始化 Service 层 (依赖注入)
	service.InitServices(dao.Repos, myredis.GetCacheService(), gateway)
	zap.L().Info("Service 层初始化成功")

	// 8. 初始化聊天 Hub（按配置选择单机 Channel 模式或分布式 Kafka 模式）
	hub := chat.NewHub(service.Svc.Message, service.Svc.Channel, service.Svc.Alliance,
		dao.Repos.User, dao.Repos.Channel)
	if conf.KafkaConfig.MessageMode == "kafka" {
		kafkaClient := chat.NewKafkaClient()
		kafkaClient.KafkaInit()
		chat.GlobalBroker = chat.NewKafkaHub(hub, kafkaClient)
	} else {
		chat.GlobalBroker = hub
	}
	go chat.GlobalBroker.Start()
	zap.L().Info("聊天 Hub 初始化成功", zap.String("mode", conf.KafkaConfig.MessageMode))

	// 9. 初始化参数校验翻译器和 HTTP 服务器
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("validator 翻译器初始化失败", zap.Error(err))
	}
	handlers := handler.NewHandlers(service.Svc)
	engine := https_server.Init(handlers)
	zap.L().Info("HTTP 服务器初始化成功")

	// 10. 启动服务
	host := conf.MainConfig.Host
	port := conf.MainConfig.Port
	go func() {
		if err := engine.Run(fmt.Sprintf("%s:%d", host, port)); err != nil {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	// 设置信号监听，等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("关闭服务器...")
	chat.GlobalBroker.Close()
	zap.L().Info("服务器已关闭")
}
