package archive

import (
	"bytes"
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/gofactor/internal/notification/entity"
	"github.com/shandysiswandi/gofactor/internal/pkg/instrument"
	"github.com/shandysiswandi/gofactor/internal/pkg/storage"
)

type Archive struct {
	client storage.Storage
	bucket string
	ins    instrument.Instrumentation
}

func New(client storage.Storage, bucket string, ins instrument.Instrumentation) *Archive {
	return &Archive{client: client, bucket: bucket, ins: ins}
}

// Put stores rec as a JSON object under key.
func (a *Archive) Put(ctx context.Context, key string, rec entity.AuditRecord) (err error) {
	ctx, span := a.ins.Tracer("notification.outbound.archive").Start(ctx, "Put",
		trace.WithAttributes(attribute.String("storage.bucket", a.bucket), attribute.String("storage.key", key)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), storage.PutOptions{
		Size:        int64(len(body)),
		ContentType: "application/json",
		Metadata: map[string]string{
			"event-id": rec.EventID,
			"kind":     rec.Kind.String(),
		},
	})
}
