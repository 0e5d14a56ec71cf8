package facultychat

import (
	"time"

	"github.com/Freeeeeet/faculty_chat/internal/dataurl"
	"github.com/dustin/go-humanize"
)

// ConversationLimit сколько последних сообщений запрашивается.
// Более старые из чата недоступны.
const ConversationLimit = 100

// timeLayout короткое время под сообщением
const timeLayout = "15:04"

// MessageView сообщение, подготовленное к показу
type MessageView struct {
	ID         string
	Mine       bool
	Text       string
	Time       string
	Attachment *AttachmentView
}

// AttachmentView строка вложения
type AttachmentView struct {
	Name string
	Type string
	Icon string
	// Size пустой, если размер не удалось определить
	Size    string
	DataURL string
}

// IsMine проверяет, что msg отправил current
func IsMine(msg Message, current Teacher) bool {
	return msg.SenderID == current.ID
}

// FormatTime короткое локальное время, nil loc означает time.Local
func FormatTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(timeLayout)
}

// Render готовит сообщения к показу в исходном порядке
func Render(messages []Message, current Teacher, loc *time.Location) []MessageView {
	views := make([]MessageView, 0, len(messages))
	for _, msg := range messages {
		views = append(views, MessageView{
			ID:         msg.ID,
			Mine:       IsMine(msg, current),
			Text:       msg.Text,
			Time:       FormatTime(msg.CreatedAt, loc),
			Attachment: renderAttachment(msg.Attachment),
		})
	}
	return views
}

func renderAttachment(a *Attachment) *AttachmentView {
	if a == nil {
		return nil
	}

	view := &AttachmentView{
		Name:    a.Name,
		Type:    a.Type,
		Icon:    AttachmentIcon(a.Type),
		DataURL: a.DataURL,
	}
	if n, err := dataurl.DecodedLen(a.DataURL); err == nil {
		view.Size = humanize.IBytes(uint64(n))
	}
	return view
}
