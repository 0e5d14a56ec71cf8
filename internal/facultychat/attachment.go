package facultychat

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/Freeeeeet/faculty_chat/internal/dataurl"
	"github.com/dustin/go-humanize"
)

// MaxAttachmentSize максимальный размер вложения в байтах
const MaxAttachmentSize = 3 * 1024 * 1024 / 2

// Иконки вложений
const (
	IconPDF  = "pdf"
	IconFile = "file"
)

// Draft выбранный в композере файл, уже закодированный для отправки
type Draft struct {
	Name    string
	Type    string
	Size    int64
	DataURL string
}

// NewDraft читает файл заявленного размера и кодирует его в data URL.
// Файлы больше MaxAttachmentSize отклоняются с *ValidationError.
func NewDraft(name, mimeType string, r io.Reader, size int64) (*Draft, error) {
	if size > MaxAttachmentSize {
		return nil, tooLarge(size)
	}

	// размер мог быть указан неверно, поэтому читаем с запасом в один байт
	data, err := io.ReadAll(io.LimitReader(r, MaxAttachmentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	if len(data) > MaxAttachmentSize {
		return nil, tooLarge(int64(len(data)))
	}

	if mimeType == "" {
		mimeType = dataurl.DefaultType
	}

	return &Draft{
		Name:    filepath.Base(name),
		Type:    mimeType,
		Size:    int64(len(data)),
		DataURL: dataurl.Encode(mimeType, data),
	}, nil
}

// DraftFromFile открывает path и собирает черновик. Тип определяется
// по расширению.
func DraftFromFile(path string) (*Draft, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open attachment: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat attachment: %w", err)
	}
	if info.IsDir() {
		return nil, &ValidationError{Message: "attachment must be a file", Detail: path}
	}

	return NewDraft(info.Name(), typeByExtension(path), f, info.Size())
}

// Attachment превращает черновик во вложение исходящего сообщения
func (d *Draft) Attachment() *Attachment {
	if d == nil {
		return nil
	}
	return &Attachment{Name: d.Name, Type: d.Type, DataURL: d.DataURL}
}

// SizeLabel размер для человека, например "1.2 MiB"
func (d *Draft) SizeLabel() string {
	return humanize.IBytes(uint64(d.Size))
}

// DecodeDataURL возвращает тип и содержимое полученного вложения
func DecodeDataURL(dataURL string) (mimeType string, data []byte, err error) {
	mimeType, data, err = dataurl.Decode(dataURL)
	if err != nil {
		return "", nil, fmt.Errorf("decode attachment: %w", err)
	}
	return mimeType, data, nil
}

// AttachmentIcon выбирает иконку по типу
func AttachmentIcon(mimeType string) string {
	if strings.Contains(strings.ToLower(mimeType), "pdf") {
		return IconPDF
	}
	return IconFile
}

func tooLarge(size int64) error {
	return &ValidationError{
		Message: "file too large",
		Detail: fmt.Sprintf("%s, limit is %s",
			humanize.IBytes(uint64(size)), humanize.IBytes(MaxAttachmentSize)),
	}
}

func typeByExtension(path string) string {
	t := mime.TypeByExtension(filepath.Ext(path))
	if t == "" {
		return dataurl.DefaultType
	}
	// параметры (charset) в data URL не передаём
	if mediaType, _, err := mime.ParseMediaType(t); err == nil {
		return mediaType
	}
	return t
}
