package lifecycle

import (
	"github.com/TruongPersonal/HUSC-ResearchHub/internal/model"
	pkgerrors "github.com/TruongPersonal/HUSC-ResearchHub/pkg/errors"
)

var (
	ErrLeaderDuplicated  = pkgerrors.New(pkgerrors.ErrConflict, "课题出现多名负责人，请重试")
	ErrAdvisorDuplicated = pkgerrors.New(pkgerrors.ErrConflict, "课题出现多名指导教师，请重试")

	ErrAdvisorHoldsOtherRole = pkgerrors.New(pkgerrors.ErrInvalidState, "该教师已以其他角色参与本课题")
	ErrLeaderNotMember       = pkgerrors.New(pkgerrors.ErrNotFound, "该学生尚未登记本课题")
	ErrLeaderIsAdvisor       = pkgerrors.New(pkgerrors.ErrInvalidState, "指导教师不能担任负责人")
)

// Roster 课题的有效成员构成
type Roster struct {
	Leader   *model.TopicMember
	Advisor  *model.TopicMember
	Members  []model.TopicMember // 已通过的普通成员
	Pending  []model.TopicMember
	Rejected []model.TopicMember
}

// ResolveRoster 从成员记录推导负责人、指导教师与各状态成员
func ResolveRoster(members []model.TopicMember) Roster {
	var r Roster
	for i := range members {
		m := members[i]
		switch m.Status {
		case model.MemberStatusPending:
			r.Pending = append(r.Pending, m)
		case model.MemberStatusRejected:
			r.Rejected = append(r.Rejected, m)
		case model.MemberStatusApproved:
			switch m.Role {
			case model.MemberRoleLeader:
				if r.Leader == nil {
					r.Leader = &m
				}
			case model.MemberRoleAdvisor:
				if r.Advisor == nil {
					r.Advisor = &m
				}
			default:
				r.Members = append(r.Members, m)
			}
		}
	}
	return r
}

// Find 按用户查找成员记录
func Find(members []model.TopicMember, userID string) *model.TopicMember {
	for i := range members {
		if members[i].UserID == userID {
			return &members[i]
		}
	}
	return nil
}

// CheckRoleSingletons 负责人、指导教师记录各至多一条（不区分审核状态）。
// 在成员分配事务提交前对重新读取的记录执行。
func CheckRoleSingletons(members []model.TopicMember) error {
	var leaders, advisors int
	for i := range members {
		switch members[i].Role {
		case model.MemberRoleLeader:
			leaders++
		case model.MemberRoleAdvisor:
			advisors++
		}
	}
	if leaders > 1 {
		return ErrLeaderDuplicated
	}
	if advisors > 1 {
		return ErrAdvisorDuplicated
	}
	return nil
}

// AdvisorPlan 指导教师替换计划：先删除 Remove，再写入 Add
type AdvisorPlan struct {
	Remove []string
	Add    *model.TopicMember
}

// PlanAdvisor 生成指导教师替换计划，teacherID 为空表示仅撤销
func PlanAdvisor(topicID string, members []model.TopicMember, teacherID string) (AdvisorPlan, error) {
	var plan AdvisorPlan
	for i := range members {
		m := &members[i]
		if m.Role == model.MemberRoleAdvisor {
			plan.Remove = append(plan.Remove, m.TopicMemberID)
			continue
		}
		if teacherID != "" && m.UserID == teacherID {
			return AdvisorPlan{}, ErrAdvisorHoldsOtherRole
		}
	}

	if teacherID != "" {
		plan.Add = &model.TopicMember{
			TopicID: topicID,
			UserID:  teacherID,
			Role:    model.MemberRoleAdvisor,
			Status:  model.MemberStatusApproved,
		}
	}
	return plan, nil
}

// LeaderPlan 负责人调整计划：先降级 Demote，再提升 Promote
type LeaderPlan struct {
	Demote  []model.TopicMember
	Promote *model.TopicMember
}

// PlanLeader 生成负责人调整计划，studentID 为空表示仅降级现任负责人。
// 目标学生必须已有成员记录，提升后状态强制为已通过。
func PlanLeader(members []model.TopicMember, studentID string) (LeaderPlan, error) {
	var plan LeaderPlan

	if studentID != "" {
		target := Find(members, studentID)
		if target == nil {
			return LeaderPlan{}, ErrLeaderNotMember
		}
		if target.Role == model.MemberRoleAdvisor {
			return LeaderPlan{}, ErrLeaderIsAdvisor
		}
		promoted := *target
		promoted.Role = model.MemberRoleLeader
		promoted.Status = model.MemberStatusApproved
		plan.Promote = &promoted
	}

	for i := range members {
		m := members[i]
		if m.Role != model.MemberRoleLeader || m.UserID == studentID {
			continue
		}
		m.Role = model.MemberRoleMember
		m.Status = model.MemberStatusApproved
		plan.Demote = append(plan.Demote, m)
	}

	return plan, nil
}
