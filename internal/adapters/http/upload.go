package httpadapter

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

const (
	uploadField           = "file"
	defaultUploadMaxBytes = 10 << 20
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// readUpload returns the filename and bytes of the multipart "file" field.
// Only the extension is checked; the content goes to the classifier as is.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (string, []byte, error) {
	if maxBytes <= 0 {
		maxBytes = defaultUploadMaxBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		if isBodyTooLarge(err) {
			return "", nil, errUploadTooLarge
		}
		return "", nil, invalidUpload("multipart field 'file' is required")
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return "", nil, invalidUpload("only JPG, JPEG or PNG images are accepted")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		if isBodyTooLarge(err) {
			return "", nil, errUploadTooLarge
		}
		return "", nil, invalidUpload("could not read the uploaded file")
	}
	if len(data) == 0 {
		return "", nil, invalidUpload("uploaded file is empty")
	}
	return header.Filename, data, nil
}

func isBodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}
