// Package fuzztests houses Go fuzz harnesses for the tern pipeline
// (source -> lexer -> parser -> call resolution). They guard against panics,
// hangs and broken span invariants on arbitrary inputs.
//
// Назначение: загружать байты в FileSet и прогонять их через лексер, парсер
// и driver.CheckSources.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
