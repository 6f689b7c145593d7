package app_service

import (
	"log"

	"whisper-wall/pkg/config"
	"whisper-wall/pkg/goroutinepool"
	"whisper-wall/services/admin_service"
)

// 全局投稿管道和审核客户端，main启动时初始化
var (
	Pipeline   *SubmissionPipeline
	Moderation *ModerationClient
)

// InitSubmissionPipeline 初始化投稿管道及其依赖
func InitSubmissionPipeline() {
	cfg := config.GetConfig()

	Moderation = NewModerationClient(
		cfg.Moderation.APIURL,
		cfg.Moderation.APIKey,
		cfg.Moderation.Model,
		cfg.Moderation.Timeout,
	)

	Pipeline = &SubmissionPipeline{
		Store:      &GormContentStore{},
		Bans:       &RegistryBanChecker{Registry: admin_service.BanRegistry},
		Classifier: Moderation,
		Filter:     &ContentFilter{},
		RunTask: func(fn func() error) error {
			return goroutinepool.SubmitNamed("post_publish_check", fn)
		},
		FailOpen:           cfg.Ban.FailOpen,
		ModerationFailOpen: cfg.Moderation.FailOpen,
		CheckTimeout:       cfg.Ban.CheckTimeout,
	}

	log.Printf("投稿管道已初始化 (ban_fail_open=%v, moderation_fail_open=%v, check_timeout=%v)",
		cfg.Ban.FailOpen, cfg.Moderation.FailOpen, cfg.Ban.CheckTimeout)
}
