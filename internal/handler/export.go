package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/diego12655/cv-analyzer-pro/internal/scorer"
	"github.com/diego12655/cv-analyzer-pro/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 负责把排名结果导出为 XLSX
type ExportHandler struct{}

func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

type exportReq struct {
	Ranking []scorer.Entry `json:"ranking" binding:"required"`
}

// ExportExcel 导出排名为 XLSX 附件
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	if _, ok := currentSession(c); !ok {
		return
	}

	var req exportReq
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Ranking) == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Missing ranking data")
		return
	}

	f := excelize.NewFile()
	sheetName := "Ranking"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Create sheet failed")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	// 表头沿用前端使用的列名
	headers := []string{"Candidato", "Puntaje (0-100)", "Nivel de Ajuste", "Fortalezas", "Riesgos/Debilidades"}
	for i, hd := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, hd)
	}

	for idx, e := range req.Ranking {
		row := idx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), e.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), e.Score)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), e.Fit)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), e.Strengths)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), e.Weaknesses)
	}

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 24)
	f.SetColWidth(sheetName, "B", "B", 14)
	f.SetColWidth(sheetName, "C", "C", 16)
	f.SetColWidth(sheetName, "D", "D", 40)
	f.SetColWidth(sheetName, "E", "E", 40)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"ranking_talento_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Export failed")
	}
}
