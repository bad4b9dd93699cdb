package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/gofactor/internal/notification"
	"github.com/shandysiswandi/gofactor/internal/recovery"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.recovery.enabled") {
		if err := recovery.New(recovery.Dependency{
			DBConn:       a.dbConn,
			CodeStore:    a.codeStore,
			Router:       a.router,
			Idempotency:  a.idemp,
			Messaging:    a.messaging,
			Config:       a.config,
			Instrument:   a.ins,
			UID:          a.uid,
			UUID:         a.uuid,
			HMAC:         a.hmac,
			MFAEncryptor: a.mfaEncryptor,
			Verifier:     a.verifier,
			Clock:        a.clock,
			Validator:    a.validator,
		}); err != nil {
			slog.Error("failed to init module recovery", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.notification.enabled") {
		dep := notification.Dependency{
			Ctx:        a.ctx,
			Messaging:  a.messaging,
			SMS:        a.sms,
			Config:     a.config,
			Instrument: a.ins,
			UUID:       a.uuid,
			Clock:      a.clock,
			Goroutine:  a.goroutine,
			Validator:  a.validator,
		}
		if a.storage != nil {
			dep.Storage = a.storage
		}

		if err := notification.New(dep); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}
}
