package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/diego12655/cv-analyzer-pro/internal/config"
	"github.com/diego12655/cv-analyzer-pro/internal/extract"
	"github.com/diego12655/cv-analyzer-pro/internal/models"
	"github.com/diego12655/cv-analyzer-pro/internal/scorer"
	"github.com/diego12655/cv-analyzer-pro/internal/service"
	"github.com/diego12655/cv-analyzer-pro/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AnalyzeHandler 负责批量 CV 评分接口。
// 每个文件消耗一个额度；评分失败不扣额度。
type AnalyzeHandler struct {
	Service   *service.SessionService
	Scorer    scorer.Scorer
	Extractor extract.Extractor
	Upload    config.UploadConfig
}

func NewAnalyzeHandler(svc *service.SessionService, sc scorer.Scorer, ex extract.Extractor, upload config.UploadConfig) *AnalyzeHandler {
	return &AnalyzeHandler{
		Service:   svc,
		Scorer:    sc,
		Extractor: ex,
		Upload:    upload,
	}
}

// AnalyzeBatch 接收 multipart 文件和职位描述，返回候选人排名。
func (h *AnalyzeHandler) AnalyzeBatch(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid multipart form")
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "No files uploaded")
		return
	}
	if h.Upload.MaxFiles > 0 && len(files) > h.Upload.MaxFiles {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Too many files")
		return
	}

	jobDescription := c.PostForm("job_description")
	if jobDescription == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Missing job_description")
		return
	}

	// 类型和大小校验在任何扣费或外部调用之前完成
	for _, fh := range files {
		if err := util.ValidateUpload(fh.Filename, fh.Size, h.Upload.MaxFileBytes); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
	}

	cost := len(files)
	ctx := c.Request.Context()

	var ranking *scorer.Ranking
	updated, err := h.Service.Consume(sess.ID, cost, func() ([]models.Analysis, error) {
		docs := make([]scorer.Document, 0, len(files))
		for _, fh := range files {
			f, err := fh.Open()
			if err != nil {
				return nil, err
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return nil, err
			}

			text, err := h.Extractor.Text(fh.Filename, data)
			if err != nil {
				return nil, err
			}
			docs = append(docs, scorer.Document{Filename: fh.Filename, Text: text})
		}

		var rerr error
		ranking, rerr = h.Scorer.Rank(ctx, jobDescription, docs)
		if rerr != nil {
			return nil, rerr
		}

		analyses := make([]models.Analysis, 0, len(ranking.Entries))
		for _, e := range ranking.Entries {
			snapshot, _ := json.Marshal(e)
			analyses = append(analyses, models.Analysis{
				ID:            uuid.NewString(),
				SessionID:     sess.ID,
				CandidateName: e.Name,
				OverallScore:  e.Score,
				FullData:      string(snapshot),
			})
		}
		return analyses, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInsufficientCredits):
			util.Error(c, http.StatusForbidden, util.CodeForbidden, "Insufficient credits")
		case errors.Is(err, service.ErrUpstreamScoring):
			// 评分失败不扣额度，向客户端报告通用失败
			util.Error(c, http.StatusBadGateway, util.CodeUpstreamErr, "Scoring failed")
		default:
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Analyze failed")
		}
		return
	}

	util.Success(c, util.Response{
		"success":           true,
		"ranking":           ranking.Entries,
		"conclusion":        ranking.Conclusion,
		"credits_remaining": updated.CreditsRemaining,
	})
}
