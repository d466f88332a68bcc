package workflow

import "github.com/qcbd/app-beneficiary/internal/validation"

// NextTab returns the tab after t, clamped at the last tab
func NextTab(t validation.Tab) validation.Tab {
	if t >= validation.TabVerification {
		return validation.TabVerification
	}
	if t < validation.TabPrimary {
		return validation.TabPrimary
	}
	return t + 1
}

// PreviousTab returns the tab before t, clamped at the first tab
func PreviousTab(t validation.Tab) validation.Tab {
	if t <= validation.TabPrimary {
		return validation.TabPrimary
	}
	if t > validation.TabVerification {
		return validation.TabVerification
	}
	return t - 1
}
