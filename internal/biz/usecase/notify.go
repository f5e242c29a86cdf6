package usecase

import (
	"github.com/rs/zerolog"

	"github.com/mailwatch/mailwatch/internal/biz/domain"
)

// NotifyUsecase resolves the sender group and evaluates the
// notification policy for a classified message
type NotifyUsecase struct {
	registry *domain.GroupRegistry
	cfg      domain.PolicyConfig
	log      zerolog.Logger
}

// NewNotifyUsecase creates the notification decision usecase
func NewNotifyUsecase(registry *domain.GroupRegistry, cfg domain.PolicyConfig, log zerolog.Logger) *NotifyUsecase {
	return &NotifyUsecase{registry: registry, cfg: cfg, log: log}
}

// Evaluate returns the sender group and the notification decision
func (u *NotifyUsecase) Evaluate(msg *domain.Message, cls domain.Classification) (string, domain.Decision) {
	group := u.registry.LabelFor(msg.Sender)
	decision := domain.EvaluatePolicy(msg, cls, group, u.cfg)

	u.log.Debug().
		Str("message_id", msg.ID).
		Str("classification", cls.Label).
		Str("group", group).
		Bool("notify", decision.Notify).
		Strs("reasons", decision.Reasons).
		Msg("policy evaluated")

	return group, decision
}
