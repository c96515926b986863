package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	appcard "github.com/xiebiao/mtgkiosk/internal/application/card"
	"github.com/xiebiao/mtgkiosk/internal/application/importer"
	appinventory "github.com/xiebiao/mtgkiosk/internal/application/inventory"
	"github.com/xiebiao/mtgkiosk/internal/application/stats"
	"github.com/xiebiao/mtgkiosk/internal/interface/http/dto"
	"github.com/xiebiao/mtgkiosk/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/mtgkiosk/pkg/errors"
	"github.com/xiebiao/mtgkiosk/pkg/response"
)

// uploadField multipart表单中的文件字段
const uploadField = "file"

// InventoryHandler /collection与/kiosk共用的库存处理器
// 当前桶由middleware.Bucket写入Context
type InventoryHandler struct {
	listCards *appcard.ListCardsUseCase
	listSets  *appcard.ListSetsUseCase
	setCards  *appinventory.BucketSetCardsUseCase
	update    *appinventory.UpdateUseCase
	stats     *stats.GetStatsUseCase
	importCSV *importer.CSVImportUseCase
	maxUpload int64
}

// NewInventoryHandler 创建库存处理器,maxUploadBytes<=0时不限制上传大小
func NewInventoryHandler(
	listCards *appcard.ListCardsUseCase,
	listSets *appcard.ListSetsUseCase,
	setCards *appinventory.BucketSetCardsUseCase,
	update *appinventory.UpdateUseCase,
	stats *stats.GetStatsUseCase,
	importCSV *importer.CSVImportUseCase,
	maxUploadBytes int64,
) *InventoryHandler {
	return &InventoryHandler{
		listCards: listCards,
		listSets:  listSets,
		setCards:  setCards,
		update:    update,
		stats:     stats,
		importCSV: importCSV,
		maxUpload: maxUploadBytes,
	}
}

// ListCards 桶内持有的卡牌
// @Summary      桶内卡牌
// @Tags         库存
// @Produce      json
// @Param        bucket      path  string true  "collection | kiosk"
// @Param        name        query string false "名称子串"
// @Param        set_code    query string false "系列代码"
// @Param        rarity      query string false "稀有度"
// @Param        colors      query string false "颜色"
// @Param        sort_by     query string false "排序字段"
// @Param        sort_order  query string false "asc | desc"
// @Param        page        query int    false "页码" default(1)
// @Param        per_page    query int    false "每页数量" default(20)
// @Success      200 {object} dto.CardPageResponse
// @Failure      400 {object} response.ErrorBody
// @Router       /{bucket} [get]
func (h *InventoryHandler) ListCards(c *gin.Context) {
	var q dto.CardListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	page, err := h.listCards.Execute(c.Request.Context(), listRequest(q, middleware.GetBucket(c)))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, dto.NewCardResponses(page.Items), page.Total, page.Page, page.PerPage)
}

// ListSets 桶内有卡的系列
// @Summary      桶内系列
// @Description  collection_count为该桶在该系列持有的总张数(Σ regular+foil),percentage = collection_count / card_count × 100
// @Tags         库存
// @Produce      json
// @Param        bucket      path  string true  "collection | kiosk"
// @Param        name        query string false "名称子串"
// @Param        set_type    query string false "系列类型"
// @Param        sort_by     query string false "released_at | name | collection_count | card_count"
// @Param        sort_order  query string false "asc | desc" default(desc)
// @Param        page        query int    false "页码" default(1)
// @Param        per_page    query int    false "每页数量" default(20)
// @Success      200 {object} dto.SetPageResponse
// @Failure      400 {object} response.ErrorBody
// @Router       /{bucket}/sets [get]
func (h *InventoryHandler) ListSets(c *gin.Context) {
	var q dto.SetListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	page, err := h.listSets.Execute(c.Request.Context(), setsRequest(q, middleware.GetBucket(c)))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, dto.NewSetSummaryResponses(page.Items), page.Total, page.Page, page.PerPage)
}

// SetCards 某系列在桶内持有的卡牌
// @Summary      桶内系列卡牌
// @Tags         库存
// @Produce      json
// @Param        bucket    path  string true  "collection | kiosk"
// @Param        code      path  string true  "系列代码"
// @Param        page      query int    false "页码" default(1)
// @Param        per_page  query int    false "每页数量" default(20)
// @Success      200 {object} dto.BucketSetCardsResponse
// @Failure      404 {object} response.ErrorBody
// @Router       /{bucket}/sets/{code}/cards [get]
func (h *InventoryHandler) SetCards(c *gin.Context) {
	var q dto.CardListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.setCards.Execute(c.Request.Context(), appinventory.BucketSetCardsRequest{
		ListCardsRequest: listRequest(q, middleware.GetBucket(c)),
		Code:             c.Param("code"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.BucketSetCardsResponse{
		Items:       dto.NewCardResponses(result.Items),
		Total:       result.Total,
		Pages:       response.TotalPages(result.Total, result.PerPage),
		CurrentPage: result.Page,
		Set:         dto.NewSetSummaryResponse(result.Set),
	})
}

// UpdateQuantity 设置绝对数量
// @Summary      设置库存数量
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        bucket   path string                    true "collection | kiosk"
// @Param        card_id  path string                    true "Scryfall ID"
// @Param        request  body dto.UpdateQuantityRequest true "数量"
// @Success      200 {object} dto.InventoryResponse
// @Failure      400 {object} response.ErrorBody
// @Failure      401 {object} response.ErrorBody
// @Failure      404 {object} response.ErrorBody
// @Router       /{bucket}/{card_id} [put]
// @Router       /{bucket}/{card_id} [post]
func (h *InventoryHandler) UpdateQuantity(c *gin.Context) {
	var req dto.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.New(apperrors.ErrCodeInvalidParams,
			"quantity_regular and quantity_foil must be non-negative integers"))
		return
	}

	bucket := middleware.GetBucket(c)
	cardID := c.Param("card_id")
	inv, err := h.update.Set(c.Request.Context(), appinventory.SetRequest{
		Bucket:          bucket,
		CardID:          cardID,
		QuantityRegular: *req.QuantityRegular,
		QuantityFoil:    *req.QuantityFoil,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	regular, foil := inv.Get(bucket)
	response.Success(c, dto.InventoryResponse{
		CardID:          cardID,
		Bucket:          bucket.String(),
		QuantityRegular: regular,
		QuantityFoil:    foil,
	})
}

// DeleteQuantity 清零桶内数量
// @Summary      清空库存
// @Tags         库存
// @Security     BearerAuth
// @Param        bucket   path string true "collection | kiosk"
// @Param        card_id  path string true "Scryfall ID"
// @Success      204
// @Failure      401 {object} response.ErrorBody
// @Failure      404 {object} response.ErrorBody
// @Router       /{bucket}/{card_id} [delete]
func (h *InventoryHandler) DeleteQuantity(c *gin.Context) {
	if err := h.update.Clear(c.Request.Context(), middleware.GetBucket(c), c.Param("card_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Stats 桶统计
// @Summary      库存统计
// @Description  total_cards为总张数,unique_cards为种数,total_value按USD价格计算
// @Tags         库存
// @Produce      json
// @Param        bucket   path  string true  "collection | kiosk"
// @Param        refresh  query bool   false "跳过缓存"
// @Success      200 {object} dto.StatsResponse
// @Router       /{bucket}/stats [get]
func (h *InventoryHandler) Stats(c *gin.Context) {
	s, err := h.stats.Execute(c.Request.Context(), middleware.GetBucket(c), refresh(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.StatsResponse{
		TotalCards:  s.TotalCards,
		UniqueCards: s.UniqueCards,
		TotalValue:  s.TotalValue,
	})
}

// ImportCSV 导入CSV
// @Summary      CSV导入
// @Description  collection桶按库存对账,kiosk桶直接累加;无效行跳过并报告
// @Tags         库存
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        bucket  path     string true "collection | kiosk"
// @Param        file    formData file   true ".csv文件"
// @Success      200 {object} dto.ImportResponse
// @Failure      400 {object} response.ErrorBody
// @Failure      401 {object} response.ErrorBody
// @Router       /{bucket}/import_csv [post]
func (h *InventoryHandler) ImportCSV(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	header, err := c.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, apperrors.Newf(apperrors.ErrCodeInvalidParams, "file exceeds %d bytes", tooLarge.Limit))
			return
		}
		response.Error(c, apperrors.New(apperrors.ErrCodeInvalidParams, "no file uploaded"))
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		response.Error(c, apperrors.New(apperrors.ErrCodeInvalidParams, "file must be a CSV"))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, apperrors.New(apperrors.ErrCodeInvalidCSV, "could not read uploaded file"))
		return
	}
	defer file.Close()

	report, err := h.importCSV.Execute(c.Request.Context(), middleware.GetBucket(c), file)
	if err != nil {
		response.Error(c, err)
		return
	}

	rowErrors := make([]dto.ImportRowError, 0, len(report.Errors))
	for _, e := range report.Errors {
		rowErrors = append(rowErrors, dto.ImportRowError{Row: e.Row, ScryfallID: e.ScryfallID, Error: e.Error})
	}
	response.Success(c, dto.ImportResponse{
		Message:  report.Message,
		Imported: report.Imported,
		Skipped:  report.Skipped,
		Errors:   rowErrors,
	})
}
