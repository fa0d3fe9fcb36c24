package entity

// OutputMediaType тип, в который всегда перекодируется сжатое изображение
const OutputMediaType = "image/jpeg"

// SelectedImage исходный файл, выбранный пользователем
type SelectedImage struct {
	Name      string // имя файла
	MediaType string // заявленный MIME-тип
	Data      []byte // содержимое файла
	Size      int64  // размер исходного файла в байтах
}

// CompressedImage результат сжатия одного SelectedImage
type CompressedImage struct {
	Name      string // имя наследуется от исходного файла
	MediaType string // всегда OutputMediaType
	Data      []byte // перекодированное содержимое
	Width     int    // ширина после масштабирования
	Height    int    // высота после масштабирования
	PreviewID string // ссылка на превью в PreviewStore
}

// Size возвращает размер сжатого файла
func (c *CompressedImage) Size() int64 {
	return int64(len(c.Data))
}
