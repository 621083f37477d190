package backup

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mserebryaakov/delivery-panel/pkg/apperror"
	"github.com/sirupsen/logrus"
)

const maxBackupBytes = 50 << 20

type backupHandler struct {
	log           *logrus.Entry
	backupService BackupService
}

func NewHandler(backupService BackupService, log *logrus.Entry) *backupHandler {
	return &backupHandler{
		log:           log,
		backupService: backupService,
	}
}

func (h *backupHandler) Register(admin gin.IRouter) {
	group := admin.Group("/backup")
	group.GET("/export", h.export)
	group.POST("/restore", h.restore)
}

func (h *backupHandler) export(c *gin.Context) {
	b, err := h.backupService.Export(c.Request.Context())
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+FileName(time.Now())+`"`)
	c.IndentedJSON(http.StatusOK, b)
}

// restore takes the backup either as a multipart "file" field or as the raw
// request body.
func (h *backupHandler) restore(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBackupBytes)

	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		data, err = readFormFile(c)
	} else {
		data, err = io.ReadAll(c.Request.Body)
	}
	if err != nil {
		if errors.Is(err, errInvalidFileName) {
			apperror.Respond(c, h.log, apperror.Validation("selecione um arquivo de backup válido (.json)"))
			return
		}
		apperror.Respond(c, h.log, apperror.NewError(apperror.HttpError, "falha ao ler arquivo", http.StatusBadRequest, err))
		return
	}

	res, err := h.backupService.Restore(c.Request.Context(), data)
	if err != nil {
		apperror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func readFormFile(c *gin.Context) ([]byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, err
	}
	if !ValidFileName(fh.Filename) {
		return nil, errInvalidFileName
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
