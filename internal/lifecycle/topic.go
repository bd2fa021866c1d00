package lifecycle

import (
	"github.com/TruongPersonal/HUSC-ResearchHub/internal/model"
	pkgerrors "github.com/TruongPersonal/HUSC-ResearchHub/pkg/errors"
)

var (
	ErrTopicStatusInvalid   = pkgerrors.New(pkgerrors.ErrInvalidState, "无效的课题目标状态")
	ErrTopicAlreadyApproved = pkgerrors.New(pkgerrors.ErrInvalidState, "课题已立项，不能变更为其他状态")
	ErrTopicMembersPending  = pkgerrors.New(pkgerrors.ErrInvalidState, "仍有成员未审核，不能立项")
	ErrTopicLeaderMissing   = pkgerrors.New(pkgerrors.ErrInvalidState, "课题必须有且仅有一名已通过的负责人")
	ErrTopicAdvisorMissing  = pkgerrors.New(pkgerrors.ErrInvalidState, "课题必须有且仅有一名已通过的指导教师")
)

// CheckTopicTransition 校验课题状态转换。
// approved → approved 为幂等操作，返回 changed=false；approved 不能转为其他状态。
func CheckTopicTransition(from, to string) (changed bool, err error) {
	switch to {
	case model.TopicStatusApproved, model.TopicStatusRejected, model.TopicStatusNeedsUpdate:
	default:
		return false, ErrTopicStatusInvalid
	}

	if from == model.TopicStatusApproved {
		if to == model.TopicStatusApproved {
			return false, nil
		}
		return false, ErrTopicAlreadyApproved
	}

	return from != to, nil
}

// CheckApprovable 立项前置条件：
// 无待审核成员，恰好一名已通过负责人，恰好一名已通过指导教师
func CheckApprovable(members []model.TopicMember) error {
	var leaders, advisors int
	for i := range members {
		m := &members[i]
		if m.Status == model.MemberStatusPending {
			return ErrTopicMembersPending
		}
		if m.Holds(model.MemberRoleLeader) {
			leaders++
		}
		if m.Holds(model.MemberRoleAdvisor) {
			advisors++
		}
	}
	if leaders != 1 {
		return ErrTopicLeaderMissing
	}
	if advisors != 1 {
		return ErrTopicAdvisorMissing
	}
	return nil
}

// EventKindFor 状态变更对应的事件类型
func EventKindFor(status string) string {
	switch status {
	case model.TopicStatusApproved:
		return model.TopicEventApproved
	case model.TopicStatusRejected:
		return model.TopicEventRejected
	case model.TopicStatusNeedsUpdate:
		return model.TopicEventNeedsUpdate
	default:
		return model.TopicEventUpdated
	}
}
