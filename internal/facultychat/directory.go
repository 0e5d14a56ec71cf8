package facultychat

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Directory текущий учитель и учителя его школы
type Directory struct {
	Current  Teacher
	School   string
	Teachers []Teacher
	// RosterErr ошибка загрузки списка учителей. Остальное продолжает
	// работать.
	RosterErr error
}

// LoadDirectory определяет текущего учителя, затем загружает учителей школы.
// Ошибка профиля фатальна и возвращается как *IdentityError.
func LoadDirectory(ctx context.Context, backend Backend) (*Directory, error) {
	dir, err := loadIdentity(ctx, backend)
	if err != nil {
		return nil, err
	}

	teachers, err := backend.SchoolTeachers(ctx)
	if err != nil {
		dir.RosterErr = &ListError{List: "teachers", Err: err}
		return dir, nil
	}
	dir.Teachers = teachers

	return dir, nil
}

func loadIdentity(ctx context.Context, backend Backend) (*Directory, error) {
	profile, err := backend.CurrentUser(ctx)
	if err != nil {
		return nil, &IdentityError{Err: err}
	}
	return &Directory{Current: profile.Teacher, School: profile.School}, nil
}

// Peers учителя школы без текущего
func (d *Directory) Peers() []Teacher {
	peers := make([]Teacher, 0, len(d.Teachers))
	for _, t := range d.Teachers {
		if t.ID != d.Current.ID {
			peers = append(peers, t)
		}
	}
	return peers
}

// Teacher ищет коллегу по id
func (d *Directory) Teacher(id string) (Teacher, bool) {
	if id == d.Current.ID {
		return d.Current, true
	}
	for _, t := range d.Teachers {
		if t.ID == id {
			return t, true
		}
	}
	return Teacher{}, false
}

// Dashboard всё, что экран показывает при открытии
type Dashboard struct {
	*Directory

	Incoming    []Invitation
	Outgoing    []Invitation
	Connections []Connection

	InvitesErr     error
	ConnectionsErr error
}

// LoadDashboard сначала загружает профиль, затем параллельно учителей,
// приглашения и подключения. Фатальна только ошибка профиля, ошибки
// списков сохраняются в dashboard.
func LoadDashboard(ctx context.Context, backend Backend) (*Dashboard, error) {
	dir, err := loadIdentity(ctx, backend)
	if err != nil {
		return nil, err
	}
	dash := &Dashboard{Directory: dir}

	// каждая горутина пишет только в свои поля
	var g errgroup.Group

	g.Go(func() error {
		teachers, err := backend.SchoolTeachers(ctx)
		if err != nil {
			dash.RosterErr = &ListError{List: "teachers", Err: err}
			return nil
		}
		dash.Teachers = teachers
		return nil
	})

	g.Go(func() error {
		incoming, outgoing, err := backend.MyInvites(ctx)
		if err != nil {
			dash.InvitesErr = &ListError{List: "invitations", Err: err}
			return nil
		}
		dash.Incoming, dash.Outgoing = incoming, outgoing
		return nil
	})

	g.Go(func() error {
		connections, err := backend.AcceptedConnections(ctx)
		if err != nil {
			dash.ConnectionsErr = &ListError{List: "connections", Err: err}
			return nil
		}
		dash.Connections = connections
		return nil
	})

	_ = g.Wait()

	return dash, nil
}
