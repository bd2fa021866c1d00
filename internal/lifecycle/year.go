package lifecycle

import (
	"github.com/TruongPersonal/HUSC-ResearchHub/internal/model"
	pkgerrors "github.com/TruongPersonal/HUSC-ResearchHub/pkg/errors"
)

var (
	ErrYearEnded        = pkgerrors.New(pkgerrors.ErrInvalidState, "学年已结束")
	ErrYearSessionsOpen = pkgerrors.New(pkgerrors.ErrInvalidState, "仍有院系会话未完成，不能结束学年")
)

// CheckYearOpen 学年未结束
func CheckYearOpen(y *model.AcademicYear) error {
	if y != nil && y.Ended() {
		return ErrYearEnded
	}
	return nil
}

// CheckYearClose 结束学年前置条件：学年未结束且全部会话已完成
func CheckYearClose(y *model.AcademicYear, sessions []model.YearSession) error {
	if err := CheckYearOpen(y); err != nil {
		return err
	}
	for i := range sessions {
		if sessions[i].Status != model.SessionStatusCompleted {
			return ErrYearSessionsOpen
		}
	}
	return nil
}
