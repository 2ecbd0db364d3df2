// Package message 提供消息管道的业务逻辑
// 职责：发送/编辑/删除的鉴权与落库、自动翻译、历史消息拉取、文件上传
// WebSocket 投递由 chat 包的 Hub 完成
package message

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"alliance_chat_server/internal/config"
	"alliance_chat_server/internal/dao/mysql/repository"
	myredis "alliance_chat_server/internal/dao/redis"
	"alliance_chat_server/internal/dto/request"
	"alliance_chat_server/internal/dto/respond"
	"alliance_chat_server/internal/infrastructure/translate"
	"alliance_chat_server/internal/model"
	"alliance_chat_server/pkg/constants"
	"alliance_chat_server/pkg/enum/channel/channel_type_enum"
	"alliance_chat_server/pkg/enum/language/language_enum"
	"alliance_chat_server/pkg/enum/member/role_enum"
	"alliance_chat_server/pkg/enum/message/message_status_enum"
	"alliance_chat_server/pkg/enum/message/message_type_enum"
	"alliance_chat_server/pkg/errorx"
	"alliance_chat_server/pkg/util/random"
	"alliance_chat_server/pkg/util/snowflake"
)

// ChannelAccessChecker 频道访问校验接口
// 由 channel service 实现，避免业务包之间的循环依赖
type ChannelAccessChecker interface {
	CheckAccess(channelId, userId, intent string) error
}

const (
	accessRead  = "read"
	accessWrite = "write"

	defaultPageSize = 50
	maxPageSize     = 100
)

// messageService 消息业务逻辑实现
type messageService struct {
	repos   *repository.Repositories
	cache   myredis.AsyncCacheService
	gateway *translate.Gateway
	access  ChannelAccessChecker
}

// NewMessageService 构造函数，注入所有依赖
func NewMessageService(repos *repository.Repositories, cacheService myredis.AsyncCacheService,
	gateway *translate.Gateway, access ChannelAccessChecker) *messageService {
	return &messageService{
		repos:   repos,
		cache:   cacheService,
		gateway: gateway,
		access:  access,
	}
}

// SendChannelMessage 发送频道消息
// 流程：写权限校验 -> 落库 -> 自动翻译 -> 联盟消息计数
// 权限校验失败时不落库、不产生任何副作用
func (m *messageService) SendChannelMessage(req request.ChatEventRequest) (*respond.NewMessageRespond, error) {
	if req.ChannelId == "" || req.SendId == "" {
		return nil, errorx.ErrInvalidParam
	}
	msgType := req.Type
	if msgType == 0 {
		msgType = message_type_enum.TEXT
	}
	if !message_type_enum.IsValid(msgType) {
		return nil, errorx.ErrInvalidParam
	}
	if msgType == message_type_enum.TEXT && strings.TrimSpace(req.Content) == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "消息内容不能为空")
	}

	// 鉴权在任何写操作之前
	if err := m.access.CheckAccess(req.ChannelId, req.SendId, accessWrite); err != nil {
		return nil, err
	}

	ch, err := m.repos.Channel.FindByUuid(req.ChannelId)
	if err != nil {
		zap.L().Error("查询频道失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	sender, err := m.repos.User.FindByUuid(req.SendId)
	if err != nil {
		zap.L().Error("查询发送者失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	senderLang := language_enum.OrDefault(sender.PreferredLanguage)

	msg := model.Message{
		Uuid:       snowflake.GenerateID(),
		AllianceId: ch.AllianceId,
		ChannelId:  ch.Uuid,
		Type:       msgType,
		Content:    req.Content,
		Language:   senderLang,
		SendId:     sender.Uuid,
		SendName:   sender.Nickname,
		SendAvatar: sender.Avatar,
		Url:        req.Url,
		FileType:   req.FileType,
		FileName:   req.FileName,
		FileSize:   req.FileSize,
		Status:     message_status_enum.UNSENT,
	}
	msg.SendAt.Time = time.Now()
	msg.SendAt.Valid = true

	if err := m.repos.Message.Create(&msg); err != nil {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}

	// 自动翻译：按联盟开关，文本消息翻译到成员语言集合（去掉发送者语言）
	translations := m.translateForAlliance(&msg)

	if err := m.repos.Alliance.IncrementMessageCount(ch.AllianceId); err != nil {
		// 计数失败不影响消息发送
		zap.L().Error(err.Error())
	}

	m.invalidateMessageListCache(ch.Uuid)

	return &respond.NewMessageRespond{
		Message:          m.buildMessageRespond(&msg, translations),
		ChannelId:        ch.Uuid,
		IsPrivateChannel: ch.Type == channel_type_enum.PRIVATE,
	}, nil
}

// translateForAlliance 翻译消息并落库
// 单语言失败由翻译网关兜底为原文，不阻塞消息链路
func (m *messageService) translateForAlliance(msg *model.Message) map[string]string {
	if msg.Type != message_type_enum.TEXT {
		return nil
	}
	alliance, err := m.repos.Alliance.FindByUuid(msg.AllianceId)
	if err != nil {
		zap.L().Error("查询联盟失败，跳过翻译", zap.Error(err))
		return nil
	}
	if alliance.AutoTranslate != 1 {
		return nil
	}

	memberLangs, err := m.repos.Member.DistinctLanguagesByAllianceUuid(msg.AllianceId)
	if err != nil {
		zap.L().Error("查询成员语言失败，跳过翻译", zap.Error(err))
		return nil
	}
	targets := m.gateway.ResolveTargetLanguages(memberLangs, msg.Language)
	if len(targets) == 0 {
		return nil
	}

	translations := m.gateway.FanOut(context.Background(), msg.Content, msg.Language, targets)
	for lang, content := range translations {
		t := model.MessageTranslation{
			MessageUuid: msg.Uuid,
			Language:    lang,
			Content:     content,
		}
		if err := m.repos.Message.SaveTranslation(&t); err != nil {
			zap.L().Error(err.Error())
		}
	}
	return translations
}

// EditMessage 编辑消息
// 仅发送者可编辑；旧原文进入编辑历史；只重译已有译文的语言
// 返回值第二项为联盟 UUID，供 Hub 投递使用
func (m *messageService) EditMessage(req request.ChatEventRequest) (*respond.MessageEditedRespond, string, error) {
	if strings.TrimSpace(req.NewContent) == "" {
		return nil, "", errorx.New(errorx.CodeInvalidParam, "消息内容不能为空")
	}
	uuid, err := strconv.ParseInt(req.MessageId, 10, 64)
	if err != nil {
		return nil, "", errorx.ErrInvalidParam
	}

	msg, err := m.repos.Message.FindByUuid(uuid)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, "", errorx.New(errorx.CodeNotFound, "消息不存在")
		}
		zap.L().Error("查询消息失败", zap.Error(err))
		return nil, "", errorx.ErrServerBusy
	}
	if msg.IsDeleted == 1 {
		return nil, "", errorx.New(errorx.CodeNotFound, "消息不存在")
	}
	if msg.SendId != req.SendId {
		return nil, "", errorx.New(errorx.CodeForbidden, "只能编辑自己的消息")
	}
	if msg.Type != message_type_enum.TEXT {
		return nil, "", errorx.New(errorx.CodeInvalidParam, "仅文本消息可编辑")
	}

	// 旧原文追加进编辑历史
	edit := model.MessageEdit{
		MessageUuid:  msg.Uuid,
		EditedBy:     req.SendId,
		PrevContent:  msg.Content,
		PrevLanguage: msg.Language,
	}
	if err := m.repos.Message.CreateEdit(&edit); err != nil {
		zap.L().Error(err.Error())
		return nil, "", errorx.ErrServerBusy
	}
	// 原文语言随消息落库时固定，编辑只换内容不换语言，
	// 即使发送者事后改了首选语言，重译仍以原始语言为源
	if err := m.repos.Message.UpdateContent(msg.Uuid, req.NewContent, msg.Language); err != nil {
		zap.L().Error(err.Error())
		return nil, "", errorx.ErrServerBusy
	}
	msg.Content = req.NewContent
	msg.IsEdited = 1

	// 只重译已有译文的语言，不扩大译文范围
	translations := make(map[string]string)
	existingLangs, err := m.repos.Message.DistinctTranslationLanguages(msg.Uuid)
	if err != nil {
		zap.L().Error("查询译文语言失败", zap.Error(err))
	} else if len(existingLangs) > 0 {
		targets := m.gateway.ResolveTargetLanguages(existingLangs, msg.Language)
		translations = m.gateway.FanOut(context.Background(), msg.Content, msg.Language, targets)
		for lang, content := range translations {
			t := model.MessageTranslation{
				MessageUuid: msg.Uuid,
				Language:    lang,
				Content:     content,
			}
			if err := m.repos.Message.SaveTranslation(&t); err != nil {
				zap.L().Error(err.Error())
			}
		}
	}

	edits, err := m.repos.Message.FindEdits(msg.Uuid)
	if err != nil {
		zap.L().Error("查询编辑历史失败", zap.Error(err))
		return nil, "", errorx.ErrServerBusy
	}
	history := make([]respond.EditHistoryItem, 0, len(edits))
	for _, e := range edits {
		history = append(history, respond.EditHistoryItem{
			Content:  e.PrevContent,
			Language: e.PrevLanguage,
			EditedAt: e.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	m.invalidateMessageListCache(msg.ChannelId)

	isPrivate := false
	if ch, err := m.repos.Channel.FindByUuid(msg.ChannelId); err == nil {
		isPrivate = ch.Type == channel_type_enum.PRIVATE
	}

	return &respond.MessageEditedRespond{
		Message:          m.buildMessageRespond(msg, translations),
		ChannelId:        msg.ChannelId,
		IsPrivateChannel: isPrivate,
		EditHistory:      history,
	}, msg.AllianceId, nil
}

// DeleteMessage 软删除消息
// 发送者本人或盟主/官员可删除；重复删除幂等
// 返回值第二项为联盟 UUID，供 Hub 投递使用
func (m *messageService) DeleteMessage(req request.ChatEventRequest) (*respond.MessageDeletedRespond, string, error) {
	uuid, err := strconv.ParseInt(req.MessageId, 10, 64)
	if err != nil {
		return nil, "", errorx.ErrInvalidParam
	}

	msg, err := m.repos.Message.FindByUuid(uuid)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, "", errorx.New(errorx.CodeNotFound, "消息不存在")
		}
		zap.L().Error("查询消息失败", zap.Error(err))
		return nil, "", errorx.ErrServerBusy
	}

	isPrivate := false
	if ch, err := m.repos.Channel.FindByUuid(msg.ChannelId); err == nil {
		isPrivate = ch.Type == channel_type_enum.PRIVATE
	}

	rsp := &respond.MessageDeletedRespond{
		MessageId:        req.MessageId,
		ChannelId:        msg.ChannelId,
		IsPrivateChannel: isPrivate,
		DeletedBy:        req.SendId,
	}
	if msg.IsDeleted == 1 {
		rsp.DeletedBy = msg.DeletedBy
		return rsp, msg.AllianceId, nil
	}

	if msg.SendId != req.SendId {
		member, err := m.repos.Member.FindByAllianceAndUser(msg.AllianceId, req.SendId)
		if err != nil || !role_enum.OFFICER_UP.Permits(member.Role) {
			return nil, "", errorx.New(errorx.CodeForbidden, "无权删除该消息")
		}
	}

	if err := m.repos.Message.MarkDeleted(msg.Uuid, req.SendId); err != nil {
		zap.L().Error(err.Error())
		return nil, "", errorx.ErrServerBusy
	}

	m.invalidateMessageListCache(msg.ChannelId)
	return rsp, msg.AllianceId, nil
}

// GetChannelMessageList 拉取频道历史消息
// include_deleted 仅盟主/官员生效；结果带全部译文，客户端按首选语言选取
func (m *messageService) GetChannelMessageList(userId string, req request.ChannelMessageListRequest) ([]respond.ChannelMessageRespond, error) {
	if err := m.access.CheckAccess(req.ChannelId, userId, accessRead); err != nil {
		return nil, err
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	includeDeleted := false
	if req.IncludeDeleted {
		ch, err := m.repos.Channel.FindByUuid(req.ChannelId)
		if err == nil {
			if member, err := m.repos.Member.FindByAllianceAndUser(ch.AllianceId, userId); err == nil {
				includeDeleted = role_enum.OFFICER_UP.Permits(member.Role)
			}
		}
	}

	cacheKey := "channel_messagelist_" + req.ChannelId + "_" + strconv.Itoa(page) + "_" + strconv.Itoa(pageSize)

	// 管理视图不走缓存
	if !includeDeleted {
		rspString, err := m.cache.Get(context.Background(), cacheKey)
		if err == nil && rspString != "" {
			var rsp []respond.ChannelMessageRespond
			if err := json.Unmarshal([]byte(rspString), &rsp); err == nil {
				return rsp, nil
			}
			zap.L().Warn("Unmarshal message list cache failed, fallback to DB", zap.String("channelId", req.ChannelId))
		} else if err != nil {
			zap.L().Error("Redis get error", zap.Error(err))
		}
	}

	messages, err := m.repos.Message.FindByChannelUuid(req.ChannelId, pageSize, (page-1)*pageSize, includeDeleted)
	if err != nil {
		zap.L().Error("查询频道消息失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	// 批量取译文，按消息分组
	uuids := make([]int64, 0, len(messages))
	for _, msg := range messages {
		uuids = append(uuids, msg.Uuid)
	}
	translationRows, err := m.repos.Message.FindTranslationsByMessageUuids(uuids)
	if err != nil {
		zap.L().Error("批量查询译文失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	translationsByMsg := make(map[int64]map[string]string, len(messages))
	for _, row := range translationRows {
		if translationsByMsg[row.MessageUuid] == nil {
			translationsByMsg[row.MessageUuid] = make(map[string]string)
		}
		translationsByMsg[row.MessageUuid][row.Language] = row.Content
	}

	// 使用 make 初始化 len=0，确保序列化后是 [] 而不是 null
	rspList := make([]respond.ChannelMessageRespond, 0, len(messages))
	for i := range messages {
		rspList = append(rspList, *m.buildMessageRespond(&messages[i], translationsByMsg[messages[i].Uuid]))
	}

	if !includeDeleted {
		m.cache.SubmitTask(func() {
			jsonBytes, err := json.Marshal(rspList)
			if err != nil {
				zap.L().Error("json marshal error", zap.Error(err))
				return
			}
			if err := m.cache.Set(context.Background(), cacheKey, string(jsonBytes), time.Duration(constants.REDIS_TIMEOUT)*time.Minute); err != nil {
				zap.L().Error("redis set key error", zap.Error(err))
			}
		})
	}

	return rspList, nil
}

// SetPinned 置顶/取消置顶
// 仅盟主/官员可操作
func (m *messageService) SetPinned(operatorId, messageId string, pinned int8) error {
	uuid, err := strconv.ParseInt(messageId, 10, 64)
	if err != nil {
		return errorx.ErrInvalidParam
	}
	msg, err := m.repos.Message.FindByUuid(uuid)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeNotFound, "消息不存在")
		}
		zap.L().Error("查询消息失败", zap.Error(err))
		return errorx.ErrServerBusy
	}
	if msg.IsDeleted == 1 {
		return errorx.New(errorx.CodeNotFound, "消息不存在")
	}

	member, err := m.repos.Member.FindByAllianceAndUser(msg.AllianceId, operatorId)
	if err != nil || !role_enum.OFFICER_UP.Permits(member.Role) {
		return errorx.New(errorx.CodeForbidden, "仅盟主/官员可置顶消息")
	}

	if err := m.repos.Message.UpdatePinned(msg.Uuid, pinned, operatorId); err != nil {
		zap.L().Error(err.Error())
		return errorx.ErrServerBusy
	}
	m.invalidateMessageListCache(msg.ChannelId)
	return nil
}

// buildMessageRespond 构建消息响应
// 软删除消息隐藏内容和译文，只保留骨架
func (m *messageService) buildMessageRespond(msg *model.Message, translations map[string]string) *respond.ChannelMessageRespond {
	rsp := &respond.ChannelMessageRespond{
		MessageId:    strconv.FormatInt(msg.Uuid, 10),
		AllianceId:   msg.AllianceId,
		ChannelId:    msg.ChannelId,
		SendId:       msg.SendId,
		SendName:     msg.SendName,
		SendAvatar:   msg.SendAvatar,
		Type:         msg.Type,
		Content:      msg.Content,
		Language:     msg.Language,
		Translations: translations,
		Url:          msg.Url,
		FileType:     msg.FileType,
		FileName:     msg.FileName,
		FileSize:     msg.FileSize,
		IsEdited:     msg.IsEdited,
		IsDeleted:    msg.IsDeleted,
		IsPinned:     msg.IsPinned,
		CreatedAt:    msg.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if msg.IsDeleted == 1 {
		rsp.Content = ""
		rsp.Translations = nil
		rsp.Url = ""
		rsp.FileName = ""
	}
	return rsp
}

// invalidateMessageListCache 消息变动后清理频道消息列表缓存
func (m *messageService) invalidateMessageListCache(channelId string) {
	m.cache.SubmitTask(func() {
		if err := m.cache.DeleteByPattern(context.Background(), "channel_messagelist_"+channelId+"_*"); err != nil {
			zap.L().Error(err.Error())
		}
	})
}

// UploadAvatar 上传头像
func (m *messageService) UploadAvatar(c *gin.Context) (string, error) {
	if err := c.Request.ParseMultipartForm(constants.FILE_MAX_SIZE); err != nil {
		zap.L().Error("parse multipart form error", zap.Error(err))
		return "", errorx.ErrServerBusy
	}
	mForm := c.Request.MultipartForm
	if len(mForm.File) == 0 {
		return "", errorx.New(errorx.CodeInvalidParam, "no file uploaded")
	}

	// 遍历所有文件，但既然是上传头像，通常只取第一个
	for _, headers := range mForm.File {
		for _, fileHeader := range headers {
			// 限制为图片类型的 MIME
			filename, err := m.saveFile(fileHeader, config.GetConfig().StaticAvatarPath, "image/jpeg", "image/png", "image/gif")
			if err != nil {
				zap.L().Error("save avatar error", zap.Error(err))
				// 如果是参数错误（如文件类型不对），尝试处理下一个文件
				if errorx.GetCode(err) == errorx.CodeInvalidParam {
					continue
				}
				return "", errorx.ErrServerBusy
			}
			zap.L().Info("upload avatar success", zap.String("filename", filename))
			return filename, nil
		}
	}
	return "", errorx.New(errorx.CodeInvalidParam, "no file found")
}

// UploadFile 上传文件（媒体频道附件）
func (m *messageService) UploadFile(c *gin.Context) ([]string, error) {
	if err := c.Request.ParseMultipartForm(constants.FILE_MAX_SIZE); err != nil {
		zap.L().Error("parse multipart form error", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	var uploadedFiles []string
	dstDir := config.GetConfig().StaticFilePath
	mForm := c.Request.MultipartForm

	for _, headers := range mForm.File {
		for _, fileHeader := range headers {
			// 上传普通文件不限制 MIME，或者可以根据需求添加限制
			filename, err := m.saveFile(fileHeader, dstDir)
			if err != nil {
				zap.L().Error("save file error", zap.Error(err))

				// 发生错误，回滚已上传的文件，保证原子性
				for _, f := range uploadedFiles {
					_ = os.Remove(filepath.Join(dstDir, f))
				}

				return nil, errorx.ErrServerBusy
			}

			zap.L().Info("upload file success", zap.String("filename", filename), zap.Int64("size", fileHeader.Size))
			uploadedFiles = append(uploadedFiles, filename)
		}
	}

	return uploadedFiles, nil
}

// saveFile 通用保存文件方法，支持 Magic Bytes 类型校验
func (m *messageService) saveFile(fileHeader *multipart.FileHeader, dstDir string, allowedMimes ...string) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// 1. 读取前 512 字节进行 MIME 类型的 Magic Bytes 校验
	buffer := make([]byte, 512)
	if _, err := src.Read(buffer); err != nil && err != io.EOF {
		return "", err
	}
	contentType := http.DetectContentType(buffer)

	// 重置文件指针
	if _, err := src.Seek(0, 0); err != nil {
		return "", err
	}

	// 2. 校验 MIME 类型
	if len(allowedMimes) > 0 {
		isAllowed := false
		for _, mime := range allowedMimes {
			if strings.HasPrefix(contentType, mime) {
				isAllowed = true
				break
			}
		}
		if !isAllowed {
			return "", errorx.Newf(errorx.CodeInvalidParam, "invalid file type: %s", contentType)
		}
	}

	// 3. 生成唯一文件名
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	newFileName := random.GetNowAndLenRandomString(10) + ext
	dst := filepath.Join(dstDir, newFileName)

	// 4. 保存文件
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return "", err
	}

	return newFileName, nil
}
