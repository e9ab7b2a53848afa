package receipt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zombor/receipt-bot/internal/scanning"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	successTemplate = "【解析完了】\n日付: %s\n金額: %s\n店名: %s\n科目: %s\n品目: %s"
	errorTemplate   = "エラーが発生しました: %s"
	itemSeparator   = ", "
)

// FormatReply renders the text sent back to the user.
// Missing receipt fields render as empty values.
func FormatReply(result Result) string {
	if result.Err != nil {
		return fmt.Sprintf(errorTemplate, result.Err.Error())
	}
	if result.Receipt == nil {
		return fmt.Sprintf(errorTemplate, "no receipt data extracted")
	}

	return formatReceipt(result.Receipt)
}

func formatReceipt(data *scanning.ReceiptData) string {
	return fmt.Sprintf(successTemplate,
		data.Date,
		formatAmount(data.Amount),
		data.Vendor,
		data.Category,
		strings.Join(data.Items, itemSeparator),
	)
}

// formatAmount renders a yen amount with thousands separators, e.g. ¥1,200.
// Fractional digits are kept as given and never rounded.
func formatAmount(amount *float64) string {
	if amount == nil {
		return ""
	}

	s := strconv.FormatFloat(*amount, 'f', -1, 64)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	intPart, frac, hasFrac := strings.Cut(s, ".")
	var grouped string
	if n, err := strconv.ParseInt(intPart, 10, 64); err == nil {
		grouped = message.NewPrinter(language.Japanese).Sprintf("%d", n)
	} else {
		grouped = groupDigits(intPart)
	}
	if hasFrac {
		grouped += "." + frac
	}
	return "¥" + sign + grouped
}

// groupDigits inserts a comma every three digits from the right
func groupDigits(digits string) string {
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
