package lifecycle

import (
	"time"

	"github.com/TruongPersonal/HUSC-ResearchHub/internal/model"
)

const (
	needsUpdatePrefix = "[Yêu cầu bổ sung]: "
	rejectedPrefix    = "[Lý do từ chối]: "

	feedbackTimeLayout = "02/01/2006 15:04"
)

// feedbackZone 反馈时间按校区时区显示
var feedbackZone = loadZone("Asia/Ho_Chi_Minh")

func loadZone(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("ICT", 7*3600)
	}
	return loc
}

// RenderFeedback 按时间顺序渲染退回与拒绝意见，
// 每条形如 "[02/01/2006 15:04] [Lý do từ chối]: 内容"
func RenderFeedback(events []model.TopicEvent) []string {
	lines := make([]string, 0, len(events))
	for i := range events {
		e := &events[i]
		if e.Message == "" {
			continue
		}
		var prefix string
		switch e.Kind {
		case model.TopicEventNeedsUpdate:
			prefix = needsUpdatePrefix
		case model.TopicEventRejected:
			prefix = rejectedPrefix
		default:
			continue
		}
		lines = append(lines, "["+e.CreatedAt.In(feedbackZone).Format(feedbackTimeLayout)+"] "+prefix+e.Message)
	}
	return lines
}
