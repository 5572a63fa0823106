// internal/handlers/uploads.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"github.com/footycollect/footycollect-api/internal/i18n"
	"github.com/footycollect/footycollect-api/internal/services"
	"github.com/footycollect/footycollect-api/internal/utils"
)

const (
	photosField  = "photos"
	dataField    = "data"
	captionField = "caption"
)

var errNoFiles = errors.New("no files uploaded")

// openUploads opens every file under field. The returned closer must be
// called once the uploads have been consumed.
func openUploads(form *multipart.Form, field string) ([]services.PhotoUpload, func(), error) {
	var (
		uploads []services.PhotoUpload
		files   []io.Closer
	)
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}
	if form == nil {
		return nil, closeAll, nil
	}

	for _, header := range form.File[field] {
		f, err := header.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		files = append(files, f)
		uploads = append(uploads, services.PhotoUpload{Filename: header.Filename, Data: f})
	}
	return uploads, closeAll, nil
}

// multipartRequest reads the JSON document in the "data" field into dest and
// opens the photo files. It writes the error response itself.
func multipartRequest(c *gin.Context, dest interface{}) ([]services.PhotoUpload, func(), bool) {
	lang := utils.GetLangFromContext(c)

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "form"), err.Error())
		return nil, nil, false
	}

	if values := form.Value[dataField]; len(values) > 0 && dest != nil {
		if err := json.Unmarshal([]byte(values[0]), dest); err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, dataField), err.Error())
			return nil, nil, false
		}
	}

	uploads, closeAll, err := openUploads(form, photosField)
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, photosField), err.Error())
		return nil, nil, false
	}
	return uploads, closeAll, true
}

// singleUpload opens the first file of the photos field.
func singleUpload(c *gin.Context) (services.PhotoUpload, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		return services.PhotoUpload{}, nil, err
	}
	uploads, closeAll, err := openUploads(form, photosField)
	if err != nil {
		return services.PhotoUpload{}, nil, err
	}
	if len(uploads) == 0 {
		closeAll()
		return services.PhotoUpload{}, nil, errNoFiles
	}
	upload := uploads[0]
	if captions := form.Value[captionField]; len(captions) > 0 {
		upload.Caption = captions[0]
	}
	return upload, closeAll, nil
}
