package pixst

import "regexp"

const objectNamePattern = `^[a-zA-Z0-9 _.-]+$`

var objectNameRe = regexp.MustCompile(objectNamePattern)

func isValidObjectName(name string) bool {
	return objectNameRe.MatchString(name)
}
