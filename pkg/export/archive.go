package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"

	"github.com/gosimple/slug"

	"policygen/pkg/gist"
	"policygen/pkg/wizard"
)

// ArchiveName is the download name of the all-documents archive.
func ArchiveName(projectName string) string {
	name := slug.Make(projectName)
	if name == "" {
		name = "documents"
	}
	return fmt.Sprintf("policygen-%s.zip", name)
}

// Archive zips every non-empty document as <kind>.md, in tab order.
func Archive(docs wizard.DocumentSet, modified time.Time) ([]byte, error) {
	tabs := docs.Tabs()
	if len(tabs) == 0 {
		return nil, fmt.Errorf("%w: nothing to archive", wizard.ErrDocumentNotFound)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, tab := range tabs {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     gist.FileName(tab.Kind),
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return nil, fmt.Errorf("add %s: %w", tab.Kind, err)
		}
		if _, err := w.Write([]byte(tab.Content)); err != nil {
			return nil, fmt.Errorf("write %s: %w", tab.Kind, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}
