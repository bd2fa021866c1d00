package lifecycle

import (
	"github.com/TruongPersonal/HUSC-ResearchHub/internal/model"
	pkgerrors "github.com/TruongPersonal/HUSC-ResearchHub/pkg/errors"
)

var (
	ErrSessionStatusInvalid      = pkgerrors.New(pkgerrors.ErrInvalidState, "无效的会话目标状态")
	ErrSessionClosed             = pkgerrors.New(pkgerrors.ErrInvalidState, "登记已关闭")
	ErrSessionTopicsUnresolved   = pkgerrors.New(pkgerrors.ErrInvalidState, "仍有课题待审核或待补充，不能进入实施阶段")
	ErrSessionApprovedUnfinished = pkgerrors.New(pkgerrors.ErrInvalidState, "仍有立项课题未结题，不能结束会话")
)

// UnresolvedTopicStatuses 阻止会话进入实施阶段的课题状态
var UnresolvedTopicStatuses = []string{model.TopicStatusPending, model.TopicStatusNeedsUpdate}

// UnfinishedApprovedStatuses 阻止会话结束的立项课题状态
var UnfinishedApprovedStatuses = []string{model.ApprovedStatusInProgress, model.ApprovedStatusNotCompleted}

// ScopeState 会话范围（院系 + 学年）内的阻塞计数
type ScopeState struct {
	UnresolvedTopics   int64
	UnfinishedApproved int64
}

// CanAccept 会话是否接受提案与登记
func CanAccept(s *model.YearSession) bool {
	return s != nil && s.Status == model.SessionStatusOnRegistration
}

// CheckAccepting CanAccept 的错误形式
func CheckAccepting(s *model.YearSession) error {
	if !CanAccept(s) {
		return ErrSessionClosed
	}
	return nil
}

// ValidSessionStatus 是否为合法的会话状态
func ValidSessionStatus(status string) bool {
	switch status {
	case model.SessionStatusOnRegistration, model.SessionStatusInProgress, model.SessionStatusCompleted:
		return true
	}
	return false
}

// CheckAdvance 校验会话状态推进。
// 学年已结束时拒绝任何推进；其余目标状态不做额外限制，允许回退。
func CheckAdvance(year *model.AcademicYear, target string, scope ScopeState) error {
	if !ValidSessionStatus(target) {
		return ErrSessionStatusInvalid
	}
	if err := CheckYearOpen(year); err != nil {
		return err
	}

	switch target {
	case model.SessionStatusInProgress:
		if scope.UnresolvedTopics > 0 {
			return ErrSessionTopicsUnresolved
		}
	case model.SessionStatusCompleted:
		if scope.UnfinishedApproved > 0 {
			return ErrSessionApprovedUnfinished
		}
	}
	return nil
}
