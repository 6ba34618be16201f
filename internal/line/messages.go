package line

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/line/line-bot-sdk-go/v7/linebot"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/domain"
)

const brandColor = "#1DB446"

func InviteLink(liffID, eventID string) string {
	return fmt.Sprintf("https://liff.line.me/%s?eventId=%s", liffID, url.QueryEscape(eventID))
}

// NewInviteMessage 生成新活动的邀请卡片
func NewInviteMessage(title, inviteLink string) *linebot.FlexMessage {
	bubble := &linebot.BubbleContainer{
		Type: linebot.FlexContainerTypeBubble,
		Body: &linebot.BoxComponent{
			Type:   linebot.FlexComponentTypeBox,
			Layout: linebot.FlexBoxLayoutTypeVertical,
			Contents: []linebot.FlexComponent{
				&linebot.TextComponent{
					Type:   linebot.FlexComponentTypeText,
					Text:   "📅 新活動建立囉！",
					Weight: linebot.FlexTextWeightTypeBold,
					Color:  brandColor,
				},
				&linebot.TextComponent{
					Type:   linebot.FlexComponentTypeText,
					Text:   title,
					Size:   linebot.FlexTextSizeTypeXl,
					Weight: linebot.FlexTextWeightTypeBold,
					Margin: linebot.FlexComponentMarginTypeMd,
				},
				&linebot.TextComponent{
					Type:   linebot.FlexComponentTypeText,
					Text:   "請將下方連結分享給朋友，大家一起來填寫有空的時間。",
					Wrap:   true,
					Color:  "#aaaaaa",
					Size:   linebot.FlexTextSizeTypeSm,
					Margin: linebot.FlexComponentMarginTypeMd,
				},
			},
		},
		Footer: &linebot.BoxComponent{
			Type:   linebot.FlexComponentTypeBox,
			Layout: linebot.FlexBoxLayoutTypeVertical,
			Contents: []linebot.FlexComponent{
				&linebot.ButtonComponent{
					Type:   linebot.FlexComponentTypeButton,
					Style:  linebot.FlexButtonStyleTypePrimary,
					Color:  brandColor,
					Action: linebot.NewURIAction("👉 點我填寫時間", inviteLink),
				},
			},
		},
	}

	return linebot.NewFlexMessage("邀請您填寫時間", bubble)
}

// FormatCandidateSlots 把候选时段渲染成纯文本，最多列出 limit 个
func FormatCandidateSlots(slots []domain.CandidateSlot, limit int, loc *time.Location) string {
	if len(slots) == 0 {
		return "目前還找不到大家都有空的時段"
	}

	var b strings.Builder
	b.WriteString("建議時段：")
	for i, slot := range slots {
		if i >= limit {
			break
		}
		start := slot.Window.StartTime().In(loc)
		end := slot.Window.EndTime().In(loc)
		fmt.Fprintf(&b, "\n%d. %s - %s（%d 人：%s）",
			i+1,
			start.Format("01/02 15:04"),
			end.Format("15:04"),
			slot.Score,
			strings.Join(slot.Participants, "、"),
		)
	}

	return b.String()
}
