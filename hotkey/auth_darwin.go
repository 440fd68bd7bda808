package hotkey

/*
#cgo LDFLAGS: -framework ApplicationServices -framework CoreFoundation

#include <ApplicationServices/ApplicationServices.h>

static int trustedNoPrompt(void) {
	const void *keys[] = { kAXTrustedCheckOptionPrompt };
	const void *values[] = { kCFBooleanFalse };
	CFDictionaryRef opts = CFDictionaryCreate(NULL, keys, values, 1,
		&kCFCopyStringDictionaryKeyCallBacks, &kCFTypeDictionaryValueCallBacks);
	Boolean ok = AXIsProcessTrustedWithOptions(opts);
	CFRelease(opts);
	if (ok) {
		return 1;
	}
	if (__builtin_available(macOS 10.15, *)) {
		return CGPreflightListenEventAccess() ? 1 : 0;
	}
	return 0;
}

static void requestListenAccess(void) {
	if (__builtin_available(macOS 10.15, *)) {
		CGRequestListenEventAccess();
	}
}
*/
import "C"

// tccAuthorizer consults the Accessibility and Input Monitoring privacy
// settings. The probe never raises the Accessibility prompt; Request asks
// for Input Monitoring, which registers the app in System Settings.
type tccAuthorizer struct{}

func NewAuthorizer(TapOptions) Authorizer { return tccAuthorizer{} }

func (tccAuthorizer) Granted() bool {
	return C.trustedNoPrompt() == 1
}

func (tccAuthorizer) Request() error {
	C.requestListenAccess()
	return nil
}
