package handler

import (
	"github.com/gin-gonic/gin"

	appcard "github.com/xiebiao/mtgkiosk/internal/application/card"
	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
	"github.com/xiebiao/mtgkiosk/internal/interface/http/dto"
	"github.com/xiebiao/mtgkiosk/pkg/cachekey"
	apperrors "github.com/xiebiao/mtgkiosk/pkg/errors"
)

// bindError 参数绑定失败统一为400
func bindError(err error) error {
	return apperrors.Newf(apperrors.ErrCodeBindError, "invalid parameters: %v", err)
}

// refresh ?refresh=true跳过缓存读取
func refresh(c *gin.Context) bool {
	return c.Query(cachekey.RefreshParam) == "true"
}

func listRequest(q dto.CardListQuery, bucket inventory.Bucket) appcard.ListCardsRequest {
	return appcard.ListCardsRequest{
		Name:      q.Name,
		SetCode:   q.SetCode,
		Rarity:    q.Rarity,
		Colors:    q.Colors,
		TypeLine:  q.TypeLine,
		Keywords:  q.Keywords,
		Query:     q.Q,
		Bucket:    bucket,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Page:      q.Page,
		PerPage:   q.PerPage,
	}
}

func setsRequest(q dto.SetListQuery, bucket inventory.Bucket) appcard.ListSetsRequest {
	return appcard.ListSetsRequest{
		Name:      q.Name,
		SetType:   q.SetType,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Page:      q.Page,
		PerPage:   q.PerPage,
		Bucket:    bucket,
	}
}
