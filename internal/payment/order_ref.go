package payment

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "eventgo-ticketing/pkg/app_errors"
)

const orderRefPrefix = "ORDER"

// FormatOrderRef 閘道端的訂單關聯鍵，格式 ORDER_<buyerID>_<orderID>
func FormatOrderRef(buyerID, orderID int) string {
	return fmt.Sprintf("%s_%d_%d", orderRefPrefix, buyerID, orderID)
}

// ParseOrderRef 嚴格解析跨信任邊界傳回的關聯鍵，
// 格式不符一律 ErrInvalidOrderRef，不嘗試救援。
func ParseOrderRef(ref string) (buyerID int, orderID int, err error) {
	parts := strings.Split(ref, "_")
	if len(parts) != 3 || parts[0] != orderRefPrefix {
		return 0, 0, apperrors.ErrInvalidOrderRef
	}

	buyerID, err = strconv.Atoi(parts[1])
	if err != nil || buyerID <= 0 {
		return 0, 0, apperrors.ErrInvalidOrderRef
	}

	orderID, err = strconv.Atoi(parts[2])
	if err != nil || orderID <= 0 {
		return 0, 0, apperrors.ErrInvalidOrderRef
	}

	return buyerID, orderID, nil
}
