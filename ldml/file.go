package ldml

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/writingsystems/ldmlfile"
	"github.com/writingsystems/ldmlfile/internal/backup"
	"github.com/writingsystems/ldmlfile/xml"
)

// ReadFile decodes the file at path with the default Decoder.
func ReadFile(path string, defaults *ldmlfile.Definition) (ws *ldmlfile.Definition, warn, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return Decoder{}.Decode(bufio.NewReader(f), defaults)
}

// WriteFile encodes ws to the file at path, using enc. If old is not nil, it
// is read entirely before the file is opened, so it may be the content of the
// file itself.
//
// If the file already exists, a backup is taken before it is overwritten. The
// file is restored from the backup if encoding fails. If the backup cannot be
// taken, the file is written without one.
func WriteFile(path string, ws *ldmlfile.Definition, old io.Reader, enc Encoder) (warn, err error) {
	if ws == nil {
		return nil, ErrNilDefinition
	}
	if err := ws.Validate(); err != nil {
		return nil, err
	}
	log := enc.Logger
	if log == nil {
		log = zap.NewNop()
	}
	var doc *xml.Document
	if old != nil {
		if doc, err = xml.Parse(old); err != nil {
			return nil, fmt.Errorf("error parsing previous document: %w", err)
		}
	}

	rec, err := backup.Create(path)
	if err != nil {
		log.Warn("writing without backup", zap.String("path", path), zap.Error(err))
		rec = nil
	}

	warn, err = writeFile(path, ws, doc, enc)
	if err != nil {
		if rec != nil {
			log.Warn("restoring from backup", zap.String("path", rec.Target()), zap.String("backup", rec.Path()), zap.Error(err))
			if rerr := rec.Restore(); rerr != nil {
				log.Error("restore failed", zap.String("path", rec.Target()), zap.String("backup", rec.Path()), zap.Error(rerr))
				return warn, err
			}
			rec.Remove()
		}
		return warn, err
	}
	if rec != nil {
		if err := rec.Remove(); err != nil {
			log.Warn("removing backup", zap.String("backup", rec.Path()), zap.Error(err))
		}
	}
	return warn, nil
}

func writeFile(path string, ws *ldmlfile.Definition, doc *xml.Document, enc Encoder) (warn, err error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	warn, err = enc.EncodeDocument(f, ws, doc)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return warn, err
}
