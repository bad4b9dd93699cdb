package recovery

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"

	"github.com/shandysiswandi/gofactor/internal/pkg/clock"
	"github.com/shandysiswandi/gofactor/internal/pkg/codestore"
	"github.com/shandysiswandi/gofactor/internal/pkg/config"
	"github.com/shandysiswandi/gofactor/internal/pkg/ecsig"
	"github.com/shandysiswandi/gofactor/internal/pkg/hash"
	"github.com/shandysiswandi/gofactor/internal/pkg/idempotency"
	"github.com/shandysiswandi/gofactor/internal/pkg/instrument"
	"github.com/shandysiswandi/gofactor/internal/pkg/messaging"
	"github.com/shandysiswandi/gofactor/internal/pkg/mfa"
	"github.com/shandysiswandi/gofactor/internal/pkg/otp"
	"github.com/shandysiswandi/gofactor/internal/pkg/router"
	"github.com/shandysiswandi/gofactor/internal/pkg/smsotp"
	"github.com/shandysiswandi/gofactor/internal/pkg/uid"
	"github.com/shandysiswandi/gofactor/internal/pkg/validator"
	"github.com/shandysiswandi/gofactor/internal/recovery/inbound"
	"github.com/shandysiswandi/gofactor/internal/recovery/outbound/db"
	"github.com/shandysiswandi/gofactor/internal/recovery/outbound/mq"
	"github.com/shandysiswandi/gofactor/internal/recovery/usecase"
)

const (
	defaultCodeTTL    = 10 * time.Minute
	defaultTOTPIssuer = "gofactor"
)

type Dependency struct {
	DBConn       *pgxpool.Pool              `validate:"required"`
	CodeStore    codestore.Store            `validate:"required"`
	Router       *router.Router             `validate:"required"`
	Idempotency  idempotency.Idempotency    `validate:"required"`
	Messaging    messaging.Publisher        `validate:"required"`
	Config       config.Config              `validate:"required"`
	Instrument   instrument.Instrumentation `validate:"required"`
	UID          uid.NumberID               `validate:"required"`
	UUID         uid.StringID               `validate:"required"`
	HMAC         hash.Hash                  `validate:"required"`
	MFAEncryptor mfa.Encryptor              `validate:"required"`
	Verifier     ecsig.Verifier             `validate:"required"`
	Clock        clock.Clocker              `validate:"required"`
	Validator    validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	codeTTL := dep.Config.GetDuration("modules.recovery.sms.code_ttl")
	codeTTL = lo.Ternary(codeTTL > 0, codeTTL, defaultCodeTTL)

	issuer := dep.Config.GetString("modules.recovery.totp.issuer")
	issuer = lo.Ternary(issuer != "", issuer, defaultTOTPIssuer)

	dbRecovery := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.UUID, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbRecovery,
		RepoMessaging: repoMsg,
		Idempotency:   dep.Idempotency,
		Validator:     dep.Validator,
		Config:        dep.Config,
		Verifier:      dep.Verifier,
		SMS:           smsotp.New(dep.CodeStore, dep.HMAC, codeTTL),
		TOTP:          otp.NewTOTP(dep.Clock),
		Provisioner:   otp.NewProvisioner(issuer),
		Sealer:        dep.MFAEncryptor,
		UID:           dep.UID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
