package permissions

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVisibleMenuFiltersByView(t *testing.T) {
	table, err := DefaultTable()
	require.NoError(t, err)
	r := NewResolver(table)

	groups := r.VisibleMenu(DomainBack, Actor{TableName: "yonghu"})
	require.Len(t, groups, 2)
	require.Equal(t, "课程管理", groups[0].Menu)
	require.Equal(t, "kechengyuyue", groups[0].Child[0].TableName)

	front := r.VisibleMenu(DomainFront, Actor{Role: "用户"})
	require.Len(t, front, 3)
}

func TestVisibleMenuDropsEntriesWithoutView(t *testing.T) {
	table, err := Compile(MenuDocument{{
		RoleName:  "用户",
		TableName: "yonghu",
		FrontMenu: []MenuGroup{
			{Menu: "a", Child: []MenuEntry{
				{TableName: "news", Buttons: []string{"新增"}},
				{TableName: "kecheng", Buttons: []string{"查看"}},
			}},
			{Menu: "b", Child: []MenuEntry{{TableName: "huiyuanka", Buttons: []string{"新增"}}}},
		},
	}})
	require.NoError(t, err)

	groups := NewResolver(table).VisibleMenu(DomainFront, Actor{Role: "用户"})
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Child, 1)
	require.Equal(t, "kecheng", groups[0].Child[0].TableName)

	// The snapshot itself is untouched.
	require.Len(t, table.Document()[0].FrontMenu[0].Child, 2)
}

func TestVisibleMenuAdminMergesBackMenus(t *testing.T) {
	table, err := DefaultTable()
	require.NoError(t, err)
	r := NewResolver(table)

	groups := r.VisibleMenu(DomainBack, Actor{TableName: "admin"})
	titles := make([]string, 0, len(groups))
	for _, g := range groups {
		titles = append(titles, g.Menu)
	}
	require.Equal(t, []string{"用户管理", "课程管理", "会员管理", "场馆管理", "系统管理"}, titles)
	require.Len(t, groups[1].Child, 2)
	require.Equal(t, AllActionLabels(), groups[1].Child[0].Buttons)
}

func TestVisibleMenuUnknownActor(t *testing.T) {
	r := NewResolver(nil)
	require.Nil(t, r.VisibleMenu(DomainBack, Actor{}))
	require.Nil(t, r.VisibleMenu(DomainFront, Actor{Role: "ghost"}))

	var nilResolver *Resolver
	require.Nil(t, nilResolver.VisibleMenu(DomainBack, Actor{TableName: "admin"}))
}
