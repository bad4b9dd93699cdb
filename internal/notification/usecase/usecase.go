package usecase

import (
	"context"
	"text/template"

	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/gofactor/internal/notification/entity"
	"github.com/shandysiswandi/gofactor/internal/pkg/clock"
	"github.com/shandysiswandi/gofactor/internal/pkg/config"
	"github.com/shandysiswandi/gofactor/internal/pkg/instrument"
	"github.com/shandysiswandi/gofactor/internal/pkg/sms"
	"github.com/shandysiswandi/gofactor/internal/pkg/validator"
)

const defaultSMSTemplate = "Your recovery verification code is {{.Code}}. Do not share it with anyone."

type repoSMS interface {
	Send(ctx context.Context, msg sms.Message) error
}

type repoArchive interface {
	Put(ctx context.Context, key string, rec entity.AuditRecord) error
}

type Usecase struct {
	repoSMS     repoSMS
	repoArchive repoArchive
	cfg         config.Config
	clock       clock.Clocker
	validator   validator.Validator
	ins         instrument.Instrumentation
	smsTpl      *template.Template
}

type Dependency struct {
	RepoSMS     repoSMS
	RepoArchive repoArchive
	Config      config.Config
	Clock       clock.Clocker
	Validator   validator.Validator
	Instrument  instrument.Instrumentation
}

// NewNotification parses the SMS template from modules.notification.sms.template.
func NewNotification(dep Dependency) (*Usecase, error) {
	text := dep.Config.GetString("modules.notification.sms.template")
	if text == "" {
		text = defaultSMSTemplate
	}

	tpl, err := template.New("sms").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, err
	}

	return &Usecase{
		repoSMS:     dep.RepoSMS,
		repoArchive: dep.RepoArchive,
		cfg:         dep.Config,
		clock:       dep.Clock,
		validator:   dep.Validator,
		ins:         dep.Instrument,
		smsTpl:      tpl,
	}, nil
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}
