package hermes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/lunagic/hermes/hermesservices/completion"
	"github.com/lunagic/hermes/hermesservices/storage"
	"github.com/lunagic/hermes/hermesservices/vault"
)

const transcriptPrefix = "search"

// Transcript records one natural language search.
type Transcript struct {
	ID         string                `json:"id"`
	At         time.Time             `json:"at"`
	Query      string                `json:"query"`
	Table      string                `json:"table"`
	Completion completion.Completion `json:"completion"`
	SQL        string                `json:"sql,omitempty"`
	Params     []any                 `json:"params,omitempty"`
	Rows       int                   `json:"rows"`
	Error      string                `json:"error,omitempty"`
}

func transcriptPath(transcript Transcript) string {
	return fmt.Sprintf("%s/%s/%s.json", transcriptPrefix, transcript.At.Format("2006/01/02"), transcript.ID)
}

// archive stores the transcript when storage is configured. Failures are
// logged and never reach the caller.
func (app *App) archive(ctx context.Context, transcript Transcript) {
	if app.storage == nil {
		return
	}

	transcript.ID = uuid.NewString()
	transcript.At = time.Now().UTC()

	payload, err := json.Marshal(transcript)
	if err != nil {
		app.logger.WarnContext(ctx, "Transcript Archive Failed", "error", err)
		return
	}

	if app.vault != nil {
		payload, err = app.vault.Encrypt(payload)
		if err != nil {
			app.logger.WarnContext(ctx, "Transcript Archive Failed", "error", err)
			return
		}
	}

	filePath := transcriptPath(transcript)
	if err := app.storage.Put(ctx, filePath, bytes.NewReader(payload)); err != nil {
		app.logger.WarnContext(ctx, "Transcript Archive Failed",
			"path", filePath,
			"error", err,
		)
		return
	}

	app.logger.DebugContext(ctx, "Transcript Archived", "path", filePath)
}

// ReadTranscript loads an archived transcript, decrypting it when v is not
// nil.
func ReadTranscript(ctx context.Context, driver storage.Driver, v *vault.Vault, filePath string) (Transcript, error) {
	reader, err := driver.Get(ctx, filePath)
	if err != nil {
		return Transcript{}, err
	}
	defer func() {
		_ = reader.Close()
	}()

	payload, err := io.ReadAll(reader)
	if err != nil {
		return Transcript{}, err
	}

	if v != nil {
		payload, err = v.Decrypt(payload)
		if err != nil {
			return Transcript{}, err
		}
	}

	transcript := Transcript{}
	if err := json.Unmarshal(payload, &transcript); err != nil {
		return Transcript{}, err
	}

	return transcript, nil
}

// Transcripts lists the archived transcript paths, oldest day first.
func Transcripts(ctx context.Context, driver storage.Driver) ([]string, error) {
	return driver.List(ctx, transcriptPrefix+"/")
}
