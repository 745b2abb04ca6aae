package fuzztests

import (
	"testing"

	"tern/internal/prelude"
)

const (
	maxFuzzInput = 1 << 16 // 64 KiB
)

// languageSeeds cover the main constructs: overloads, type inference,
// delegates, annotations, extensions and safe calls.
var languageSeeds = []string{
	"",
	"package app\n",
	"package app\nfun main() {}\n",
	"package app\nfun f(x: Int) = x\nfun f(x: Long) = x\nfun main() { f(1) }\n",
	"package app\nfun <K, V> pair(k: K, v: V): Map<K, V> = mapOf(k to v)\n",
	"package app\nval xs = listOf(1, 2, 3).map { it.toString() }\n",
	"package app\nclass Box<T>(val value: T) {\n  fun get(): T = value\n}\nval b = Box(\"x\").get()\n",
	"package app\nval lazyName: String by lazy { \"n\" }\nvar port: Int by stored(0)\n",
	"package app\n@Deprecated(\"use g\")\nfun old() = 1\nfun g() = old()\n",
	"package app\nfun String?.orEmpty(): String = this ?: \"\"\nfun h(s: String?) = s?.length\n",
	"package app\nfun f() = f()\n",
	"package app\nfun g(a: Int, b: String = \"\", vararg rest: Int) {}\nfun main() { g(1, rest = 2) }\n",
	"package app\nimport tern.*\nfun <reified T> name(): String = typeName<T>()\n",
	"package app\nfun main() { with(1) { plus(2) }; run { 3 }.let { it } }\n",
	"package app\nopen class A { inner class B }\nfun A.ext() {}\n",
	"fun (",
	"class {",
	"val x = ((((",
	"@",
	"package app\nfun main() { val f: (Int) -> Int = { it }; f(1) }\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range languageSeeds {
		f.Add([]byte(s))
	}
	f.Add(clampSeed(prelude.Source()))
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxFuzzInput {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxFuzzInput]...)
}
