package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tsFrontendSource = `import { z } from "zod";
import { apiBase } from "./config";

export interface Item {
  id: number;
  title: string;
  discount?: number;
}

export const itemSchema = z.object({
  title: z.string().min(1),
  price: z.number(),
  discount: z.string().optional(),
});

export async function createItem(payload: Item) {
  return fetch("/items", {
    method: "POST",
    body: JSON.stringify(payload),
  });
}

const listItems = async () => {
  return axios.get("/items");
};
`

func parseTS(t *testing.T, source string) *FileResult {
	t.Helper()
	res, err := NewParser().Parse(context.Background(), "src/api.ts", []byte(source), LangTypeScript)
	require.NoError(t, err)
	return res
}

func TestTSExtract_Validator(t *testing.T) {
	res := parseTS(t, tsFrontendSource)

	require.Len(t, res.Validators, 1)
	v := res.Validators[0]
	assert.Equal(t, "itemSchema", v.Name)
	require.Len(t, v.Fields, 3)
	assert.Equal(t, FieldDecl{Name: "title", Type: "string"}, v.Fields[0])
	assert.Equal(t, FieldDecl{Name: "price", Type: "number"}, v.Fields[1])
	assert.Equal(t, FieldDecl{Name: "discount", Type: "string", Optional: true}, v.Fields[2])
}

func TestTSExtract_Interface(t *testing.T) {
	res := parseTS(t, tsFrontendSource)

	require.Len(t, res.Structurals, 1)
	s := res.Structurals[0]
	assert.Equal(t, "Item", s.Name)
	require.Len(t, s.Fields, 3)
	assert.Equal(t, FieldDecl{Name: "id", Type: "number"}, s.Fields[0])
	assert.Equal(t, FieldDecl{Name: "discount", Type: "number", Optional: true}, s.Fields[2])
}

func TestTSExtract_Functions(t *testing.T) {
	res := parseTS(t, tsFrontendSource)

	create := findFunction(res.Functions, "createItem")
	require.NotNil(t, create)
	require.Len(t, create.Params, 1)
	assert.Equal(t, ParamDecl{Name: "payload", Type: "Item"}, create.Params[0])

	list := findFunction(res.Functions, "listItems")
	require.NotNil(t, list)
	assert.Empty(t, list.Params)
}

func TestTSExtract_FetchCallSite(t *testing.T) {
	res := parseTS(t, tsFrontendSource)

	var fetchCall *CallSite
	for i := range res.Calls {
		if res.Calls[i].Callee == "fetch" {
			fetchCall = &res.Calls[i]
		}
	}
	require.NotNil(t, fetchCall)
	assert.Equal(t, "/items", fetchCall.URL)
	assert.Equal(t, "POST", fetchCall.HTTPMethod)
	assert.Equal(t, "createItem", fetchCall.Caller)
}

func TestTSExtract_AxiosCallSite(t *testing.T) {
	res := parseTS(t, tsFrontendSource)

	var axiosCall *CallSite
	for i := range res.Calls {
		if res.Calls[i].URL != "" && res.Calls[i].HTTPMethod == "GET" {
			axiosCall = &res.Calls[i]
		}
	}
	require.NotNil(t, axiosCall)
	assert.Equal(t, "/items", axiosCall.URL)
	assert.Equal(t, "listItems", axiosCall.Caller)
}

func TestTSExtract_Imports(t *testing.T) {
	res := parseTS(t, tsFrontendSource)

	modules := make([]string, 0, len(res.Imports))
	for _, imp := range res.Imports {
		modules = append(modules, imp.Module)
	}
	assert.Contains(t, modules, "zod")
	assert.Contains(t, modules, "./config")
}

func TestZodToken(t *testing.T) {
	assert.Equal(t, "string", zodToken("z.string().min(1)"))
	assert.Equal(t, "number", zodToken("z.number()"))
	assert.Equal(t, "array", zodToken("z.array(z.string())"))
	assert.Equal(t, "", zodToken("somethingElse()"))
}

func TestTSTypeToken(t *testing.T) {
	assert.Equal(t, "Item", tsTypeToken(": Item"))
	assert.Equal(t, "Item", tsTypeToken(": Item[]"))
	assert.Equal(t, "Promise", tsTypeToken(": Promise<Item>"))
	assert.Equal(t, "string", tsTypeToken(": string | null"))
}
