package handler

// Canned bilingual replies for the webhook command vocabulary.
const (
	textGreeting = "อัสสลามุอะลัยกุม 🌙\nAssalamu alaikum!\n\n" +
		"พิมพ์ link ตามด้วยรหัสจากเว็บไซต์เพื่อเชื่อมบัญชี\n" +
		"Send `link <code>` from the website to connect your account.\n\n" +
		"พิมพ์ help เพื่อดูคำสั่งทั้งหมด / type help for all commands"

	textHelp = "คำสั่งที่ใช้ได้ / Available commands:\n\n" +
		"link <code> — เชื่อมบัญชีกับเว็บไซต์ / connect your account\n" +
		"unlink — ยกเลิกการเชื่อมต่อ / disconnect\n" +
		"status — ตรวจสอบสถานะ / check connection status\n" +
		"help — แสดงข้อความนี้ / show this message"

	textLinked = "เชื่อมบัญชีสำเร็จแล้ว ✅\nAccount linked successfully!\n\n" +
		"ตั้งค่าการแจ้งเตือนได้ที่เว็บไซต์\nManage your notifications on the website."

	textLinkInvalid = "รหัสไม่ถูกต้องหรือหมดอายุแล้ว ❌\n" +
		"Invalid or expired code.\n\n" +
		"ขอรหัสใหม่จากเว็บไซต์ / request a new code from the website."

	textLinkUsage = "กรุณาพิมพ์ link ตามด้วยรหัสจากเว็บไซต์\n" +
		"Usage: link <code>"

	textUnlinked = "ยกเลิกการเชื่อมต่อแล้ว\nAccount disconnected.\n\n" +
		"การแจ้งเตือนทั้งหมดถูกปิด / all notifications stopped."

	textNotLinked = "ยังไม่ได้เชื่อมบัญชี\nNo account linked yet.\n\n" +
		"พิมพ์ link ตามด้วยรหัสจากเว็บไซต์ / send `link <code>` to connect."

	textUnknownCommand = "ไม่เข้าใจคำสั่งนี้ 🙏\nSorry, I didn't understand that.\n\n" +
		"พิมพ์ help เพื่อดูคำสั่งทั้งหมด / type help for commands"
)
