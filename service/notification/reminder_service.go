/*
 * @module service/notification/reminder_service
 * @description 填报提醒服务，按表单配置的时间向有查看权限的用户发送邮件提醒
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 每分钟调度 -> 匹配通知时间的表单 -> 查询可见用户 -> 投递提醒
 * @rules 仅通知已开启提醒且时间精确匹配的表单；单个投递失败不中断整批
 * @dependencies formhub-service/service/models, formhub-service/service/permission, github.com/robfig/cron/v3
 * @refs service/init.go
 */

package notification

import (
	"log"
	"time"

	"formhub-service/service/models"
	"formhub-service/service/permission"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Mailer 邮件投递接口
type Mailer interface {
	SendReminder(user *models.User, form *models.DynamicForm) error
}

// LogMailer 仅写日志的投递实现，未配置SMTP时使用
type LogMailer struct{}

// SendReminder 把提醒内容写入日志
func (m *LogMailer) SendReminder(user *models.User, form *models.DynamicForm) error {
	log.Printf("填报提醒: to=%s, form=%s", user.Email, form.Name)
	return nil
}

// ReminderService 填报提醒服务
type ReminderService struct {
	db          *gorm.DB
	permissions *permission.Service
	mailer      Mailer
	cron        *cron.Cron
}

// NewReminderService 创建填报提醒服务实例
func NewReminderService(db *gorm.DB, permissions *permission.Service, mailer Mailer) *ReminderService {
	if mailer == nil {
		mailer = &LogMailer{}
	}
	return &ReminderService{
		db:          db,
		permissions: permissions,
		mailer:      mailer,
		cron:        cron.New(),
	}
}

// Start 启动每分钟一次的提醒调度
func (s *ReminderService) Start() error {
	_, err := s.cron.AddFunc("* * * * *", func() {
		s.SendReminders(time.Now().Format("15:04"))
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Println("填报提醒调度已启动")
	return nil
}

// Stop 停止提醒调度
func (s *ReminderService) Stop() {
	s.cron.Stop()
}

// SendReminders 向通知时间匹配的表单投递提醒，返回投递成功的数量
func (s *ReminderService) SendReminders(currentTime string) int {
	var forms []models.DynamicForm
	err := s.db.
		Where("is_notification_enabled = ? AND notification_time = ?", true, currentTime).
		Find(&forms).Error
	if err != nil {
		log.Printf("[ERROR] 查询待提醒表单失败: %v", err)
		return 0
	}

	sent := 0
	for i := range forms {
		viewers, err := s.permissions.ListViewers(forms[i].ID)
		if err != nil {
			log.Printf("[ERROR] 查询表单可见用户失败: form=%s, err=%v", forms[i].ID, err)
			continue
		}

		for j := range viewers {
			if err := s.mailer.SendReminder(&viewers[j], &forms[i]); err != nil {
				log.Printf("[ERROR] 提醒投递失败: to=%s, form=%s, err=%v", viewers[j].Email, forms[i].Name, err)
				continue
			}
			sent++
		}
	}

	return sent
}
