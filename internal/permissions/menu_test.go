package permissions

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const yamlMenu = `
- roleName: 用户
  tableName: yonghu
  frontMenu:
    - menu: 课程
      child:
        - menu: 课程列表
          tableName: kecheng
          buttons: [查看, 新增]
`

const commentedJSONMenu = `[
  // members
  {
    "roleName": "用户",
    "tableName": "yonghu",
    "frontMenu": [{"menu": "课程", "child": [{"menu": "课程列表", "tableName": "kecheng", "buttons": ["查看", "新增"],}]}],
  },
]`

func TestParseMenuDocumentFormats(t *testing.T) {
	fromYAML, err := ParseMenuDocument([]byte(yamlMenu), FormatYAML)
	require.NoError(t, err)

	fromJSON, err := ParseMenuDocument([]byte(commentedJSONMenu), FormatJSON)
	require.NoError(t, err)

	require.Equal(t, fromYAML, fromJSON)
	require.Equal(t, []string{"查看", "新增"}, fromJSON[0].FrontMenu[0].Child[0].Buttons)
}

func TestParseMenuDocumentErrors(t *testing.T) {
	_, err := ParseMenuDocument([]byte(`{not json`), FormatJSON)
	require.Error(t, err)

	_, err = ParseMenuDocument([]byte(`[]`), Format("toml"))
	require.ErrorContains(t, err, "unsupported format")
}

func TestFormatFromPath(t *testing.T) {
	require.Equal(t, FormatYAML, FormatFromPath("menu.yaml"))
	require.Equal(t, FormatYAML, FormatFromPath("/etc/gym/MENU.YML"))
	require.Equal(t, FormatJSON, FormatFromPath("menu.json"))
	require.Equal(t, FormatJSON, FormatFromPath("menu"))
}

func TestLoginFlag(t *testing.T) {
	for _, v := range []string{"", "是", "yes", "true"} {
		require.True(t, loginFlag(v), v)
	}
	for _, v := range []string{"否", "NO", "false", "0"} {
		require.False(t, loginFlag(v), v)
	}
}
