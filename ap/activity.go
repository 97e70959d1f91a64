/*
Copyright 2026 Dima Krasner

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package ap

const (
	CreateActivity   ObjectType = "Create"
	UpdateActivity   ObjectType = "Update"
	DeleteActivity   ObjectType = "Delete"
	AnnounceActivity ObjectType = "Announce"
	FollowActivity   ObjectType = "Follow"
	AcceptActivity   ObjectType = "Accept"
	RejectActivity   ObjectType = "Reject"
	UndoActivity     ObjectType = "Undo"
	LikeActivity     ObjectType = "Like"
	AddActivity      ObjectType = "Add"
	RemoveActivity   ObjectType = "Remove"
	BlockActivity    ObjectType = "Block"
	MoveActivity     ObjectType = "Move"
)

var activityTypes = map[ObjectType]struct{}{
	CreateActivity:   {},
	UpdateActivity:   {},
	DeleteActivity:   {},
	AnnounceActivity: {},
	FollowActivity:   {},
	AcceptActivity:   {},
	RejectActivity:   {},
	UndoActivity:     {},
	LikeActivity:     {},
	AddActivity:      {},
	RemoveActivity:   {},
	BlockActivity:    {},
	MoveActivity:     {},
}

// IsActivity determines whether objects of this type are activities, which have an actor and an object.
func (t ObjectType) IsActivity() bool {
	_, ok := activityTypes[t]
	return ok
}
