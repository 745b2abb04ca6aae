package types

import (
	"strings"
)

// Format renders t in source syntax, e.g. `List<Int>?`, `String.(Int) -> Unit`, `T!`.
func (in *Interner) Format(t TypeID, names Namer) string {
	var sb strings.Builder
	in.format(&sb, t, names)
	return sb.String()
}

func (in *Interner) format(sb *strings.Builder, t TypeID, names Namer) {
	tt, ok := in.Lookup(t)
	if !ok {
		sb.WriteString("<invalid>")
		return
	}
	switch tt.Kind {
	case KindError:
		sb.WriteString("<error>")
		return
	case KindNothing:
		sb.WriteString("Nothing")
	case KindParam:
		sb.WriteString(names.ParamName(ParamID(tt.Sym)))
	case KindClass:
		sb.WriteString(names.ClassName(ClassID(tt.Sym)))
		if args := in.Args(t); len(args) > 0 {
			sb.WriteByte('<')
			for i, a := range args {
				if i > 0 {
					sb.WriteString(", ")
				}
				in.format(sb, a, names)
			}
			sb.WriteByte('>')
		}
	case KindFn:
		info, _ := in.FnInfo(t)
		if tt.Nullable {
			sb.WriteByte('(')
		}
		if info.Receiver.IsValid() {
			in.format(sb, info.Receiver, names)
			sb.WriteByte('.')
		}
		sb.WriteByte('(')
		for i, p := range info.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			in.format(sb, p, names)
		}
		sb.WriteString(") -> ")
		in.format(sb, info.Result, names)
		if tt.Nullable {
			sb.WriteString(")?")
		}
		return
	case KindFlexible:
		info, _ := in.FlexInfo(t)
		in.format(sb, info.Lower, names)
		sb.WriteByte('!')
		return
	}
	if tt.Nullable {
		sb.WriteByte('?')
	}
}
