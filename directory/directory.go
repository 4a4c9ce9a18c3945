// Package directory is the external user-directory collaborator: a static,
// read-only mapping from participant id to display data. The messaging
// core never looks inside it; only presentation-side callers do.
package directory

import (
	"chat-core/domain"
	"fmt"
	"sort"
)

type User struct {
	ID              domain.ParticipantID
	Name            string
	ProfileImageURL string
}

type Directory struct {
	users map[domain.ParticipantID]User
}

func New(users []User) *Directory {
	d := &Directory{users: make(map[domain.ParticipantID]User, len(users))}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

// Static returns the demo directory shipped with the product.
func Static() *Directory {
	return New([]User{
		{ID: 1, Name: "Alisha", ProfileImageURL: "https://randomuser.me/api/portraits/women/89.jpg"},
		{ID: 2, Name: "John", ProfileImageURL: "https://randomuser.me/api/portraits/men/32.jpg"},
		{ID: 3, Name: "Maddie", ProfileImageURL: "https://randomuser.me/api/portraits/women/65.jpg"},
	})
}

func (d *Directory) Lookup(id domain.ParticipantID) (User, bool) {
	u, ok := d.users[id]
	return u, ok
}

// DisplayName resolves a participant to something printable, falling back
// to the raw id for participants the directory has never heard of.
func (d *Directory) DisplayName(id domain.ParticipantID) string {
	if u, ok := d.users[id]; ok {
		return u.Name
	}
	return fmt.Sprintf("user-%d", id)
}

func (d *Directory) All() []User {
	out := make([]User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
