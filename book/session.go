package book

import (
	"go.uber.org/zap"
)

// Session keeps book mode flag across view instances, so view replaced after
// chapter navigation opens right away.
type Session interface {
	BookMode() (bool, error)
	SetBookMode(on bool) error
}

// resumeOpenness is openness of view resumed in book mode, spring settles
// back to 1 from there.
const resumeOpenness = 1.2

func (v *View) resume() {
	if v.session == nil {
		return
	}
	on, err := v.session.BookMode()
	if err != nil {
		v.log.Warn("Unable to read book mode", zap.Error(err))
		return
	}
	if !on {
		return
	}
	v.persist(false)
	v.open = true
	v.openness.Value = resumeOpenness
	v.log.Debug("Resuming in book mode")
	v.updatePages()
}

// persist stores book mode flag.
func (v *View) persist(on bool) {
	if v.session == nil {
		return
	}
	if err := v.session.SetBookMode(on); err != nil {
		v.log.Warn("Unable to store book mode", zap.Error(err))
	}
}
