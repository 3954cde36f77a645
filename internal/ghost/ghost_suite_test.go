package ghost_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestGhost(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ghost Suite")
}
