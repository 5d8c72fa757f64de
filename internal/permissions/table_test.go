package permissions

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestCompileRejectsEmptyDocument(t *testing.T) {
	_, err := Compile(nil)
	require.ErrorIs(t, err, errEmptyMenuDocument)
}

func TestCompileReportsEveryProblem(t *testing.T) {
	_, err := Compile(MenuDocument{
		{
			RoleName:  "",
			TableName: "users",
			BackMenu: []MenuGroup{{Child: []MenuEntry{
				{TableName: "yonghu", Buttons: []string{"新增", "支付"}},
				{TableName: " ", Buttons: []string{"查看"}},
			}}},
		},
		{
			RoleName:  "用户",
			TableName: "users",
		},
	})
	require.Error(t, err)

	errs := multierr.Errors(err)
	require.Len(t, errs, 3)
	require.True(t, errors.Is(err, errEmptyRoleName))
	require.True(t, errors.Is(err, errEmptyResource))
	require.True(t, errors.Is(err, errDuplicateTable))
	require.ErrorContains(t, err, `[0].backMenu[0].child[1]: menu: entry tableName is required`)
}

func TestCompileSkipsUnknownButtons(t *testing.T) {
	table, err := Compile(MenuDocument{{
		RoleName:  "会员",
		TableName: "huiyuan",
		FrontMenu: []MenuGroup{{Child: []MenuEntry{
			{TableName: "kecheng", Buttons: []string{"查看", "支付", "查看评论", "create"}},
		}}},
	}})
	require.NoError(t, err)

	require.Equal(t, []Action{ActionView}, table.Lookup(DomainFront, "会员", "kecheng").Actions())
	require.Equal(t, []string{
		`[0].frontMenu[0].child[0]: "支付"`,
		`[0].frontMenu[0].child[0]: "查看评论"`,
		`[0].frontMenu[0].child[0]: "create"`,
	}, table.IgnoredButtons())
	require.Equal(t, []string{"查看", "支付", "查看评论", "create"}, table.Document()[0].FrontMenu[0].Child[0].Buttons)

	clean, err := Compile(MenuDocument{{RoleName: "会员", TableName: "huiyuan"}})
	require.NoError(t, err)
	require.Nil(t, clean.IgnoredButtons())
}

func TestCompileRejectsDuplicateRoles(t *testing.T) {
	_, err := Compile(MenuDocument{
		{RoleName: "用户", TableName: "yonghu"},
		{RoleName: "用户", TableName: "huiyuan"},
	})
	require.ErrorIs(t, err, errDuplicateRole)
}

func TestCompileMergesRepeatedResources(t *testing.T) {
	table, err := Compile(MenuDocument{{
		RoleName:  "管理员",
		TableName: "users",
		BackMenu: []MenuGroup{
			{Menu: "a", Child: []MenuEntry{{TableName: "kecheng", Buttons: []string{"查看"}}}},
			{Menu: "b", Child: []MenuEntry{{TableName: "kecheng", Buttons: []string{"删除", "删除"}}}},
		},
	}})
	require.NoError(t, err)

	set := table.Lookup(DomainBack, "users", "kecheng")
	require.Equal(t, []Action{ActionView, ActionDelete}, set.Actions())
}

func TestCompileHonoursLoginFlags(t *testing.T) {
	table, err := Compile(MenuDocument{{
		RoleName:      "教练",
		TableName:     "jiaolian",
		HasBackLogin:  "是",
		HasFrontLogin: "否",
		BackMenu:      []MenuGroup{{Child: []MenuEntry{{TableName: "kecheng", Buttons: []string{"查看"}}}}},
		FrontMenu:     []MenuGroup{{Child: []MenuEntry{{TableName: "kecheng", Buttons: []string{"查看"}}}}},
	}})
	require.NoError(t, err)

	require.True(t, table.Lookup(DomainBack, "jiaolian", "kecheng").Has(ActionView))
	require.False(t, table.Lookup(DomainFront, "教练", "kecheng").Has(ActionView))
	require.Empty(t, table.Principals(DomainFront))
	require.Equal(t, []string{"jiaolian"}, table.Principals(DomainBack))
}

func TestCompileDoesNotAliasInput(t *testing.T) {
	doc := MenuDocument{{
		RoleName:  "用户",
		TableName: "yonghu",
		FrontMenu: []MenuGroup{{Child: []MenuEntry{{TableName: "news", Buttons: []string{"查看"}}}}},
	}}
	table, err := Compile(doc)
	require.NoError(t, err)

	doc[0].FrontMenu[0].Child[0].Buttons[0] = "删除"
	require.Equal(t, []string{"查看"}, table.Document()[0].FrontMenu[0].Child[0].Buttons)
}

func TestNilTableLookups(t *testing.T) {
	var table *Table
	require.Zero(t, table.Lookup(DomainFront, "a", "b"))
	require.Nil(t, table.Principals(DomainBack))
	require.Nil(t, table.Resources(DomainBack, "a"))
	require.Nil(t, table.Document())
}

func TestDefaultTableCompiles(t *testing.T) {
	table, err := DefaultTable()
	require.NoError(t, err)

	require.Equal(t, []string{"jiaolian", "users", "yonghu"}, table.Principals(DomainBack))
	require.Equal(t, []string{"用户"}, table.Principals(DomainFront))
	require.Contains(t, table.Resources(DomainBack, "users"), "menu")
	require.True(t, table.Lookup(DomainFront, "用户", "kecheng").Has(ActionCreate))
}
