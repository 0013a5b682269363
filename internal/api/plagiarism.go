package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type plagiarismRequest struct {
	Text string `json:"text" form:"text"`
}

// CheckPlagiarism scans posted text, or the text of an uploaded PDF or text
// file, against every stored abstract.
func (s *Server) CheckPlagiarism(c *gin.Context) {
	var req plagiarismRequest
	var file []byte

	if strings.HasPrefix(c.ContentType(), binding.MIMEJSON) {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, bindError(err))
			return
		}
	} else {
		req.Text = c.PostForm("text")
		upload, err := s.readUpload(c, "file")
		if err != nil {
			respondError(c, err)
			return
		}
		if upload != nil {
			file = upload.Data
		}
	}

	result, err := s.scanner.Check(c.Request.Context(), req.Text, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
