//go:build darwin && cgo

package native

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa
#import <Cocoa/Cocoa.h>
#include <stdint.h>

extern void goMenuDispatch(uintptr_t sender);

@interface WebMenuDispatch : NSObject
+ (void)dispatchEvent:(id)sender;
@end

@implementation WebMenuDispatch
+ (void)dispatchEvent:(id)sender {
	goMenuDispatch((uintptr_t)sender);
}
@end

void wm_register_dispatch(void) {
	[WebMenuDispatch class];
}

uintptr_t wm_menu_new(void) {
	NSMenu *menu = [[NSMenu alloc] initWithTitle:@""];
	return (uintptr_t)menu;
}

uintptr_t wm_item_new(const char *title, const char *key) {
	NSMenuItem *item;
	@autoreleasepool {
		item = [[NSMenuItem alloc]
			initWithTitle:[NSString stringWithUTF8String:title]
			action:@selector(dispatchEvent:)
			keyEquivalent:[NSString stringWithUTF8String:key]];
		[item setTarget:[WebMenuDispatch class]];
	}
	return (uintptr_t)item;
}

void wm_item_set_mask(uintptr_t item, unsigned long long mask) {
	[(NSMenuItem *)item setKeyEquivalentModifierMask:(NSEventModifierFlags)mask];
}

unsigned long long wm_item_mask(uintptr_t item) {
	return (unsigned long long)[(NSMenuItem *)item keyEquivalentModifierMask];
}

void wm_item_set_tag(uintptr_t item, long tag) {
	[(NSMenuItem *)item setTag:(NSInteger)tag];
}

long wm_item_tag(uintptr_t item) {
	return (long)[(NSMenuItem *)item tag];
}

void wm_menu_add_item(uintptr_t menu, uintptr_t item) {
	[(NSMenu *)menu addItem:(NSMenuItem *)item];
}

void wm_item_set_submenu(uintptr_t item, uintptr_t menu) {
	[(NSMenuItem *)item setSubmenu:(NSMenu *)menu];
}

void wm_set_main_menu(uintptr_t menu) {
	[NSApplication sharedApplication];
	[NSApp setMainMenu:(NSMenu *)menu];
	[(NSMenu *)menu update];
}

void wm_release(uintptr_t obj) {
	[(id)obj release];
}
*/
import "C"
