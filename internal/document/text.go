package document

import (
	"bufio"
	"io"
)

// ReadText reads plain text with one paragraph per line. No formatting is
// available, so paragraphs carry a nil Format.
func ReadText(r io.Reader) (Document, error) {
	var b builder
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		b.add(sc.Text(), nil)
	}
	if err := sc.Err(); err != nil {
		return Document{}, err
	}
	return Document{Paragraphs: b.paragraphs, PageCount: b.pages(), DefaultFont: DefaultFont}, nil
}
