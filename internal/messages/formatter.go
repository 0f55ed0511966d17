// Package messages turns raw chat input into message records ready for
// broadcast, persisting the ones that belong to the room history.
package messages

import (
	"chatrooms-backend/internal/models"
	"context"
	"fmt"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"
)

const (
	timeLayout = "3:04 pm"
	dateLayout = "02-Jan-2006"
)

type Gateway interface {
	UserByUsername(ctx context.Context, username string) (models.User, error)
	SaveMessage(ctx context.Context, msg models.Message) error
}

type IDGenerator interface {
	Generate() int64
}

type Formatter struct {
	db       Gateway
	ids      IDGenerator
	location *time.Location
	sugar    *zap.SugaredLogger
	now      func() time.Time
}

func NewFormatter(db Gateway, ids IDGenerator, location *time.Location, sugar *zap.SugaredLogger) *Formatter {
	return &Formatter{
		db:       db,
		ids:      ids,
		location: location,
		sugar:    sugar,
		now:      time.Now,
	}
}

func (f *Formatter) stamp(msg *models.Message) {
	now := f.now().In(f.location)
	msg.Time = now.Format(timeLayout)
	msg.Date = now.Format(dateLayout)
	msg.CreatedAt = now.UnixMilli()
}

// Format builds the record for text sent by sender in room. Bot messages are
// never stored, neither are empty texts. A failed save is logged and the
// record is still returned. The only error is a sender that can't be resolved.
func (f *Formatter) Format(ctx context.Context, sender string, text string, room string) (models.Message, error) {
	msg := models.Message{
		UserName:    sender,
		DisplayName: models.BotName,
		Text:        text,
		Type:        models.MessageTypeText,
	}
	f.stamp(&msg)

	if sender == models.BotName {
		return msg, nil
	}

	user, err := f.db.UserByUsername(ctx, sender)
	if err != nil {
		return models.Message{}, fmt.Errorf("format message: %w", err)
	}

	msg.ID = f.ids.Generate()
	msg.Room = room
	msg.DisplayName = user.DisplayName

	if text != "" {
		err = f.db.SaveMessage(ctx, msg)
		if err != nil {
			f.sugar.Errorf("Couldn't save message of [%s] in room [%s]: %v", sender, room, err)
		}
	}

	return msg, nil
}

// Typing is the transient indicator shown to the others in the room.
func (f *Formatter) Typing(displayName string) models.Message {
	msg := models.Message{
		UserName:    models.BotName,
		DisplayName: models.BotName,
		Text:        fmt.Sprintf("%s is typing a message..", displayName),
		Type:        models.MessageTypeText,
		Typing:      true,
	}
	f.stamp(&msg)
	return msg
}

// FormatImage stores an uploaded image as a message of the uploader's room.
// A failed save is returned as an error.
func (f *Formatter) FormatImage(ctx context.Context, p models.ActivePresence, upload models.Upload) (models.Message, error) {
	msg := models.Message{
		ID:           f.ids.Generate(),
		ConnectionID: p.ConnectionID,
		UserName:     p.UserName,
		DisplayName:  p.DisplayName,
		Room:         p.Room,
		Type:         models.MessageTypeImage,
		FileName:     upload.FileName,
		OriginalName: upload.OriginalName,
		Path:         upload.Path,
	}
	f.stamp(&msg)

	err := f.db.SaveMessage(ctx, msg)
	if err != nil {
		return models.Message{}, fmt.Errorf("save image %s: %w", upload.FileName, err)
	}

	return msg, nil
}
