// kafka_hub.go
// 核心职责：分布式模式下的聊天 Hub 实现
// 1. 上行事件发布到 Kafka，而不是进程内通道
// 2. 作为 Kafka 消费者，从消息队列读取全量事件后复用单机 Hub 的分发逻辑
// 3. 连接表仍然只维护本机连接，其他实例各自消费同一 Topic 并投递各自的连接
package chat

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	myconfig "alliance_chat_server/internal/config"
)

// KafkaHub 分布式聊天中枢
// 组合单机 Hub：登录/登出和投递逻辑不变，只有事件的传输路径换成 Kafka
type KafkaHub struct {
	hub    *Hub
	client *KafkaClient
}

// NewKafkaHub 创建分布式聊天 Hub
func NewKafkaHub(hub *Hub, client *KafkaClient) *KafkaHub {
	return &KafkaHub{
		hub:    hub,
		client: client,
	}
}

// Start 启动 Kafka 消费者服务
// 1. 消费协程：从 Kafka 读取事件 -> 交给 Hub 分发
// 2. 主循环：复用 Hub 的登录/登出事件处理
func (k *KafkaHub) Start() {
	defer func() {
		// 捕获 panic 防止整个程序崩溃
		if r := recover(); r != nil {
			zap.L().Error(fmt.Sprintf("kafka hub panic: %v", r))
		}
	}()

	// 启动一个 Goroutine 专门负责从 Kafka 读取事件
	go func() {
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error(fmt.Sprintf("kafka consumer panic: %v", r))
			}
		}()
		for {
			kafkaMessage, err := k.client.Consumer.ReadMessage(ctx)
			if err != nil {
				zap.L().Error(err.Error())
				continue
			}
			zap.L().Debug(fmt.Sprintf("topic=%s, partition=%d, offset=%d",
				kafkaMessage.Topic, kafkaMessage.Partition, kafkaMessage.Offset))
			k.hub.dispatch(kafkaMessage.Value)
		}
	}()

	// 主循环：复用 Hub 的客户端管理
	for {
		select {
		case client, ok := <-k.hub.Login:
			if !ok {
				return
			}
			if client == nil {
				continue
			}
			k.hub.onLogin(client)
		case client, ok := <-k.hub.Logout:
			if !ok {
				return
			}
			if client == nil {
				continue
			}
			k.hub.onLogout(client)
		}
	}
}

// Publish 实现 MessageBroker 接口：事件写入 Kafka
func (k *KafkaHub) Publish(ctx context.Context, msg []byte) error {
	key := []byte(strconv.Itoa(myconfig.GetConfig().KafkaConfig.Partition))
	return k.client.SendMessage(ctx, key, msg)
}

// RegisterClient 实现 MessageBroker 接口：注册客户端
func (k *KafkaHub) RegisterClient(client *UserConn) {
	k.hub.Login <- client
}

// UnregisterClient 实现 MessageBroker 接口：注销客户端
func (k *KafkaHub) UnregisterClient(client *UserConn) {
	k.hub.Logout <- client
}

// ConnectionsFor 实现 MessageBroker 接口：获取本机连接
func (k *KafkaHub) ConnectionsFor(userId string) []*UserConn {
	return k.hub.ConnectionsFor(userId)
}

// Close 关闭代理资源
func (k *KafkaHub) Close() {
	k.hub.Close()
	if k.client != nil {
		k.client.KafkaClose()
	}
}
