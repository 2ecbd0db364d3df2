// ws_gateway.go
// 核心职责：WebSocket 连接生命周期管理
// 1. 建立 WebSocket 连接 (Upgrade)
// 2. 封装 UserConn 对象，管理读写协程 (Read/Write Loop)
// 3. 上行事件先按连接身份覆盖 send_id，再通过 MessageBroker 投递
package chat

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	dao "alliance_chat_server/internal/dao/mysql"
	"alliance_chat_server/internal/dto/request"
	"alliance_chat_server/internal/model"
	"alliance_chat_server/pkg/constants"
	"alliance_chat_server/pkg/enum/message/message_status_enum"
)

// MessageBack 用于回传消息给前端
// Uuid 为消息雪花 ID，写入成功后据此更新投递状态；非消息事件为 0
type MessageBack struct {
	Message []byte
	Uuid    int64
}

// UserConn 表示一个 WebSocket 客户端连接
type UserConn struct {
	Conn     *websocket.Conn
	Uuid     string
	SendBack chan *MessageBack // 下行通道，由 Hub 写入
}

// 允许任何来源的连接，跨域由前端部署环境决定
var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

var ctx = context.Background()

// Read 从 WebSocket 读取上行事件并通过 Broker 发布
// send_id 不信任客户端，统一按连接的认证身份覆盖
func (c *UserConn) Read() {
	zap.L().Info("ws read goroutine start", zap.String("userId", c.Uuid))
	defer func() {
		GlobalBroker.UnregisterClient(c)
		_ = c.Conn.Close()
	}()
	for {
		_, jsonMessage, err := c.Conn.ReadMessage()
		if err != nil {
			zap.L().Info("ws read closed", zap.String("userId", c.Uuid), zap.Error(err))
			return
		}
		var event request.ChatEventRequest
		if err := json.Unmarshal(jsonMessage, &event); err != nil {
			zap.L().Error("ws event unmarshal error", zap.Error(err))
			continue
		}
		event.SendId = c.Uuid
		stamped, err := json.Marshal(event)
		if err != nil {
			zap.L().Error(err.Error())
			continue
		}
		// 通过接口发布消息，不关心具体实现
		if err := GlobalBroker.Publish(ctx, stamped); err != nil {
			zap.L().Error(err.Error())
		}
	}
}

// Write 从 SendBack 通道读取消息并发送给 WebSocket
func (c *UserConn) Write() {
	zap.L().Info("ws write goroutine start", zap.String("userId", c.Uuid))
	for messageBack := range c.SendBack {
		err := c.Conn.WriteMessage(websocket.TextMessage, messageBack.Message)
		if err != nil {
			zap.L().Error(err.Error())
			return
		}
		// 顺利发送后把消息投递状态改为已投递
		// 测试场景下可能没有初始化数据库连接
		if messageBack.Uuid != 0 && dao.GormDB != nil {
			if res := dao.GormDB.Model(&model.Message{}).Where("uuid = ?", messageBack.Uuid).
				Update("status", message_status_enum.SENT); res.Error != nil {
				zap.L().Error(res.Error.Error())
			}
		}
	}
}

// NewClientInit WebSocket 握手入口，认证通过后由 handler 调用
func NewClientInit(c *gin.Context, clientId string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error(err.Error())
		return
	}
	client := &UserConn{
		Conn:     conn,
		Uuid:     clientId,
		SendBack: make(chan *MessageBack, constants.CHANNEL_SIZE),
	}
	// 通过接口注册 websocket 客户端
	GlobalBroker.RegisterClient(client)
	go client.Read()
	go client.Write()
	zap.L().Info("ws连接成功", zap.String("userId", clientId))
}

// ClientLogout 主动登出，关闭该用户的全部连接
func ClientLogout(clientId string) error {
	for _, client := range GlobalBroker.ConnectionsFor(clientId) {
		GlobalBroker.UnregisterClient(client)
		if err := client.Conn.Close(); err != nil {
			zap.L().Error(err.Error())
		}
	}
	return nil
}
