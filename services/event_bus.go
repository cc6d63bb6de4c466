package services

import (
	"fmt"
	"time"

	"github.com/bird3325/hankki-sub000/models"
	"gorm.io/gorm"
)

type eventDeps struct {
	db  *gorm.DB
	rt  *RealtimeHub
	ps  *PushService
	fam *FamilyService
}

var _events eventDeps

func InitEventDeps(db *gorm.DB, rt *RealtimeHub, ps *PushService, fam *FamilyService) {
	_events = eventDeps{db: db, rt: rt, ps: ps, fam: fam}
}

// EmitMealChange fans a table-change invalidation out to everyone who
// can currently observe the record: the owner plus co-members. Safe to
// call anywhere; a nil hub makes it a no-op.
func EmitMealChange(ownerID uint, table, event string) {
	if _events.rt == nil {
		return
	}
	_events.rt.NotifyChange(ownerID, table, event)
	if _events.fam == nil {
		return
	}
	friends, err := _events.fam.FriendIDs(ownerID)
	if err != nil {
		return
	}
	for id := range friends {
		_events.rt.NotifyChange(id, table, event)
	}
}

// EmitSocial records a like/comment notification and delivers it over
// the hub and push.
func EmitSocial(userID uint, typ, message string, mealID uint) {
	if _events.db == nil {
		return
	}
	n := &models.Notification{UserID: userID, Type: typ, Message: message, MealID: mealID, CreatedAt: time.Now()}
	_ = _events.db.Create(n).Error

	if _events.rt != nil {
		_events.rt.Broadcast(userID, map[string]any{
			"kind":         "notification.created",
			"notification": n,
		})
	}
	if _events.ps != nil {
		_events.ps.PushToUser(userID, "한끼", message, map[string]string{
			"type": typ, "mealId": fmt.Sprintf("%d", mealID),
		})
	}
}
