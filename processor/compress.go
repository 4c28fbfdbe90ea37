// processor/compress.go
package processor

import (
	"fmt"

	"github.com/golang/snappy"
)

// compress сжимает текст сообщения перед шифрованием
func compress(data []byte) []byte {
	return snappy.Encode(nil, data)
}

// decompress восстанавливает текст после расшифровки
func decompress(data []byte) ([]byte, error) {
	decompressed, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("ошибка распаковки: %w", err)
	}
	return decompressed, nil
}
