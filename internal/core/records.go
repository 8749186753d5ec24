package core

import "github.com/JonMunkholm/csvsearch/internal/csv"

func init() {
	RegisterKind(ParserKind[[]string]("raw", "rows of strings as they appear in the file", csv.Identity{}, false))
	RegisterKind(ParserKind("student", "id,name,major", csv.StudentRecordFactory(), true))
	RegisterKind(ParserKind("star", "id,properName,x,y,z", csv.StarFactory(), true))
}
