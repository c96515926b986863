package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	appcard "github.com/xiebiao/mtgkiosk/internal/application/card"
	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
	"github.com/xiebiao/mtgkiosk/internal/interface/http/dto"
	apperrors "github.com/xiebiao/mtgkiosk/pkg/errors"
	"github.com/xiebiao/mtgkiosk/pkg/response"
)

// CardHandler 卡牌/系列目录HTTP处理器
type CardHandler struct {
	listCards *appcard.ListCardsUseCase
	getCard   *appcard.GetCardUseCase
	bulkCards *appcard.BulkCardsUseCase
	keywords  *appcard.KeywordsUseCase
	listSets  *appcard.ListSetsUseCase
	setCards  *appcard.SetCardsUseCase
	v2Cards   *appcard.V2CardsUseCase
}

// NewCardHandler 创建卡牌处理器
func NewCardHandler(
	listCards *appcard.ListCardsUseCase,
	getCard *appcard.GetCardUseCase,
	bulkCards *appcard.BulkCardsUseCase,
	keywords *appcard.KeywordsUseCase,
	listSets *appcard.ListSetsUseCase,
	setCards *appcard.SetCardsUseCase,
	v2Cards *appcard.V2CardsUseCase,
) *CardHandler {
	return &CardHandler{
		listCards: listCards,
		getCard:   getCard,
		bulkCards: bulkCards,
		keywords:  keywords,
		listSets:  listSets,
		setCards:  setCards,
		v2Cards:   v2Cards,
	}
}

// ListCards 卡牌列表
// @Summary      卡牌列表
// @Description  按名称、系列、稀有度、颜色、类型、关键字过滤,支持排序和分页
// @Tags         卡牌
// @Produce      json
// @Param        name        query string false "名称子串"
// @Param        set_code    query string false "系列代码"
// @Param        rarity      query string false "稀有度,逗号分隔"
// @Param        colors      query string false "颜色W/U/B/R/G,colorless表示无色"
// @Param        type_line   query string false "类型子串"
// @Param        keywords    query string false "关键字,逗号分隔(全部包含)"
// @Param        source      query string false "collection | kiosk"
// @Param        sort_by     query string false "name | collector_number | cmc | rarity | released_at | set_code"
// @Param        sort_order  query string false "asc | desc"
// @Param        page        query int    false "页码" default(1)
// @Param        per_page    query int    false "每页数量(1-100)" default(20)
// @Param        refresh     query bool   false "跳过缓存"
// @Success      200 {object} dto.CardPageResponse
// @Failure      400 {object} response.ErrorBody
// @Router       /cards [get]
func (h *CardHandler) ListCards(c *gin.Context) {
	var q dto.CardListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	page, err := h.listCards.Execute(c.Request.Context(), listRequest(q, inventory.Bucket(q.Source)))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, dto.NewCardResponses(page.Items), page.Total, page.Page, page.PerPage)
}

// SearchCards 全文搜索
// @Summary      搜索卡牌
// @Description  在名称、类型、规则文本中搜索
// @Tags         卡牌
// @Produce      json
// @Param        q         query string true  "搜索词"
// @Param        page      query int    false "页码" default(1)
// @Param        per_page  query int    false "每页数量" default(20)
// @Success      200 {object} dto.CardPageResponse
// @Failure      400 {object} response.ErrorBody
// @Router       /cards/search [get]
func (h *CardHandler) SearchCards(c *gin.Context) {
	var q dto.CardListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}
	if strings.TrimSpace(q.Q) == "" {
		response.Error(c, apperrors.New(apperrors.ErrCodeInvalidParams, "query parameter q is required"))
		return
	}

	page, err := h.listCards.Execute(c.Request.Context(), listRequest(q, inventory.Bucket(q.Source)))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, dto.NewCardResponses(page.Items), page.Total, page.Page, page.PerPage)
}

// GetCard 单卡详情
// @Summary      卡牌详情
// @Tags         卡牌
// @Produce      json
// @Param        id       path  string true  "Scryfall ID"
// @Param        refresh  query bool   false "跳过缓存"
// @Success      200 {object} dto.CardResponse
// @Failure      404 {object} response.ErrorBody
// @Router       /cards/{id} [get]
func (h *CardHandler) GetCard(c *gin.Context) {
	result, err := h.getCard.Execute(c.Request.Context(), c.Param("id"), refresh(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewCardResponse(result))
}

// BulkCards 批量查询
// @Summary      批量查询卡牌
// @Description  按请求顺序返回,不存在的ID被忽略
// @Tags         卡牌
// @Accept       json
// @Produce      json
// @Param        request body dto.BulkCardsRequest true "卡牌ID列表"
// @Success      200 {object} dto.BulkCardsResponse
// @Failure      400 {object} response.ErrorBody
// @Router       /cards/bulk [post]
func (h *CardHandler) BulkCards(c *gin.Context) {
	var req dto.BulkCardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.New(apperrors.ErrCodeInvalidParams, "card_ids must be a non-empty list"))
		return
	}

	cards, err := h.bulkCards.Execute(c.Request.Context(), req.CardIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.BulkCardsResponse{Cards: dto.NewCardResponses(cards)})
}

// Keywords 关键字列表
// @Summary      全部关键字
// @Tags         卡牌
// @Produce      json
// @Success      200 {object} dto.KeywordsResponse
// @Router       /keywords [get]
func (h *CardHandler) Keywords(c *gin.Context) {
	keywords, err := h.keywords.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.KeywordsResponse{Keywords: keywords})
}

// AllSets 全部系列
// @Summary      系列列表
// @Description  collection_count为收藏数量
// @Tags         系列
// @Produce      json
// @Param        name        query string false "名称子串"
// @Param        set_type    query string false "系列类型"
// @Param        sort_by     query string false "released_at | name | collection_count | card_count"
// @Param        sort_order  query string false "asc | desc" default(desc)
// @Param        page        query int    false "页码" default(1)
// @Param        per_page    query int    false "每页数量" default(20)
// @Success      200 {object} dto.SetPageResponse
// @Failure      400 {object} response.ErrorBody
// @Router       /all-sets [get]
func (h *CardHandler) AllSets(c *gin.Context) {
	var q dto.SetListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	page, err := h.listSets.Execute(c.Request.Context(), setsRequest(q, ""))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, dto.NewSetSummaryResponses(page.Items), page.Total, page.Page, page.PerPage)
}

// SetCards 系列全部卡牌
// @Summary      系列卡牌
// @Tags         系列
// @Produce      json
// @Param        code path string true "系列代码"
// @Success      200 {object} dto.SetCardsResponse
// @Failure      404 {object} response.ErrorBody
// @Router       /sets/{code}/cards [get]
func (h *CardHandler) SetCards(c *gin.Context) {
	result, err := h.setCards.Execute(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.SetCardsResponse{
		Set:   dto.NewSetResponse(result.Set),
		Items: dto.NewCardResponses(result.Items),
		Total: len(result.Items),
	})
}

// V2Cards 卡牌列表(可附带系列收藏统计)
// @Summary      卡牌列表v2
// @Description  指定set_code且include_set_details=true时返回set_details
// @Tags         卡牌
// @Produce      json
// @Param        set_code             query string false "系列代码"
// @Param        source               query string false "collection | kiosk"
// @Param        include_set_details  query bool   false "附带系列统计"
// @Param        page                 query int    false "页码" default(1)
// @Param        per_page             query int    false "每页数量" default(20)
// @Success      200 {object} dto.V2CardsResponse
// @Failure      400 {object} response.ErrorBody
// @Failure      404 {object} response.ErrorBody
// @Router       /v2/cards [get]
func (h *CardHandler) V2Cards(c *gin.Context) {
	var q dto.CardListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.v2Cards.Execute(c.Request.Context(), appcard.V2CardsRequest{
		ListCardsRequest:  listRequest(q, inventory.Bucket(q.Source)),
		IncludeSetDetails: q.IncludeSetDetails,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.V2CardsResponse{
		Items:       dto.NewCardResponses(result.Items),
		Total:       result.Total,
		Pages:       response.TotalPages(result.Total, result.PerPage),
		CurrentPage: result.Page,
		SetDetails:  dto.NewSetSummaryResponse(result.SetDetails),
	})
}
