package cqueue

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCQueue(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "CQueue Suite")
}
